// Package watcher turns bursts of filesystem events in a template directory
// into a single debounced reload trigger. The trigger runs on the watcher's
// own goroutine; callers embedding it in a host should hand the trigger off
// to the host's defer facility instead of mutating registry state directly.
package watcher
