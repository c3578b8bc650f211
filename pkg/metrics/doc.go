/*
Package metrics exposes chester's Prometheus metrics: a dedicated Registry
holding chester_sweeps_total, chester_stage_status, chester_coverage_percent
and chester_tests_set_size, a Collector that refreshes the three gauges from
AppState on a fixed interval, and a Server that exposes the registry plus a
liveness endpoint over HTTP.

	reg := metrics.NewRegistry()
	coll := metrics.NewCollector(reg, st.Reader(), idx)
	coll.Start()
	srv := metrics.NewServer(reg)
	go srv.Start(cfg.MetricsAddr)
*/
package metrics
