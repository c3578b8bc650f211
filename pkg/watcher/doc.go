/*
Package watcher implements chester's ChangeWatcher: wait_for_change(root)
blocks until a non-ignored filesystem change is observed under root, using
fsnotify with debounced, recursive, ignore-filtered batches.

Recursive watching is mandatory but fsnotify only watches individual
directories, so the watcher walks the tree at attach time and registers
every directory it finds, then incrementally adds newly created
subdirectories as Create events for directories arrive — the same approach
linkerd's credswatcher uses for a single directory, generalized to a whole
tree.

A call whose root differs from the watcher's current root transparently
tears down and recreates the underlying fsnotify.Watcher before blocking;
repeated calls with the same root reuse it.
*/
package watcher
