// Package registry binds discovered templates to host commands. It owns
// the caption-to-handle mapping, degrades duplicate keyboard shortcuts
// instead of aborting a load, and guarantees reload cycles neither leak
// handles nor register a caption twice. All entry points are expected to
// run on the host's single scripting thread; there is no internal locking.
package registry
