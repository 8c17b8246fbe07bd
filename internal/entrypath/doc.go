/*
Package entrypath parses the path that selects which value of a program to
evaluate, e.g. `servers[0].port`.

The format is a dot-separated sequence of segments, each a binding or field
name optionally followed by a list index. The first segment names a
top-level binding.
*/
package entrypath
