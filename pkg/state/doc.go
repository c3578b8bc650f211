/*
Package state holds chester's process-wide AppState: one Status cell per
stage (check, tests, coverage) plus the RepoRoot cell, split into a Reader
handle (many, shared by every shell and the IPC server) and a Writer handle
(one per stage, owned by the shell that drives it).

Each cell is guarded independently; the package makes no cross-cell
atomicity guarantee. Writing RepoRoot additionally publishes ChangeDetected
on the event bus before the write call returns.
*/
package state
