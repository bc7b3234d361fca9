// Package templua compiles script templates that interleave literal text
// with embedded Lua fragments and manages the per-render environment they
// execute against. Templates use two tag kinds: << expr >> evaluates a Lua
// expression and appends its stringified value to the output, and
// <% stmt %> splices Lua statements verbatim for control flow around
// literal and output regions. Discovery of template files and their
// registration as host commands live in the catalog and registry
// subpackages.
package templua
