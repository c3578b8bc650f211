/*
Package events implements chester's in-process event bus: many publishers,
many subscribers, single stream, per-subscriber FIFO delivery.

Every subscription only sees events published after Subscribe was called.
Send never blocks — a subscriber that falls more than Capacity events behind
silently loses the oldest events it had not yet consumed. This is the
backbone the pipeline shells (pkg/pipeline) use to chain stages: a shell
subscribes, waits for its precondition event, and publishes its own outcome
when the wrapped component finishes.
*/
package events
