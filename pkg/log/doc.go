/*
Package log provides structured logging for chester using zerolog.

A single package-level Logger is configured via Init and shared by every
component. Every call to Init replaces the previous configuration; a later
call is not ignored. Component loggers (WithComponent) attach a "component"
field so log lines from the watcher, the stage shells, the IPC server and
the bus can be told apart without threading a logger through every call.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	watcherLog := log.WithComponent("watcher")
	watcherLog.Info().Str("root", root).Msg("attached")
*/
package log
