// Package catalog discovers template definitions on disk. A scan pairs
// every script file in a single directory level with its companion settings
// file and produces descriptors in enumeration order. Invalid entries are
// skipped with a warning; discovery is total over a directory with some
// bad files in it.
package catalog
