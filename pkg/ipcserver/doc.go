/*
Package ipcserver exposes chester's live status over a JSON HTTP API bound
to a Unix domain socket, so only local processes can read or drive it. The
surface is deliberately small: three read endpoints over AppState's three
stage cells, plus /repo/root, which retargets the watched repo root on PUT
and reports the current one on GET.

Every request is logged with a generated request ID, the same id-per-unit
pattern the rest of the daemon uses for its own resources, so a single
request's log lines can be picked out of the component-tagged stream.
*/
package ipcserver
