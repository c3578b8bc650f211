/*
Package config loads chester's YAML configuration file: the ignored-path
patterns the watcher uses to drop events, the check/tests/list-tests/
coverage commands the stage runners invoke, and the ambient options (IPC
socket location, metrics address, log level/format).

	cfg, err := config.Load("chester.yaml")
*/
package config
