/*
Package testsindex tracks the ordered set of declared tests and decides
whether coverage needs to re-run: a refresh reports TestsSetChanged unless
the newly listed set is identical (symmetric difference of size zero) to
the previously stored, non-empty set — in which case coverage's expensive
instrumentation run can be skipped.
*/
package testsindex
