/*
Package pipeline wires chester's five long-lived shells onto the event bus.
Each shell is a goroutine running the same loop shape — receive, guard on
the event tag it cares about, transition AppState to Pending, call its
runner, transition to Success or Failure, publish the outcome event — the
same long-lived ticker-and-select worker shape the rest of the daemon's
background goroutines use, generalized here to event-driven rather than
timer-driven wakeups.

A shell ignores any event whose tag isn't its precondition; this is what
turns the bus's single broadcast stream into the linear stage DAG:

	ChangeWatcherShell --ChangeDetected--> CheckShell
	                                         +--CheckPassed--> TestsShell
	                                         +--CheckFailed (terminal)
	                                                            +--TestsPassed--> TestsIndexShell
	                                                            +--TestsFailed (terminal)
	                                                                                +--TestsSetChanged--> CoverageShell
	                                                                                +--TestsSetNotChanged (terminal)

A runner failure or a "not changed" skip means the precondition event for
the next shell is simply never published, so the sweep stops there without
any explicit cancellation.
*/
package pipeline
