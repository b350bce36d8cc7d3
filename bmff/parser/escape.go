package parser

import "go/token"

// EscapeName returns name usable as a Go identifier. Names that collide
// with a Go keyword get a trailing underscore: "type" becomes "type_".
func EscapeName(name string) string {
	if token.IsKeyword(name) {
		return name + "_"
	}
	return name
}
