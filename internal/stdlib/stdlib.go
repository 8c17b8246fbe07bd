// Package stdlib embeds the builtin library that is loaded ahead of every
// program. Calls made from inside it are hidden from reported call chains.
package stdlib

import _ "embed"

// FileName is the name the builtin library is registered under.
const FileName = "<stdlib>/std.hcl"

//go:embed std.hcl
var source []byte

// Source returns the builtin library source.
func Source() []byte {
	return source
}
