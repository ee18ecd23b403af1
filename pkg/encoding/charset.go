// Package encoding provides text encoding utilities for model files written
// by legacy exporters.
package encoding

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ToUTF8 returns s unchanged when it is valid UTF-8 and otherwise decodes it
// as Windows-1252, the code page older Windows exporters write names in.
func ToUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	result, _, err := transform.String(charmap.Windows1252.NewDecoder(), s)
	if err != nil {
		return s
	}
	return result
}

// FromUTF8 encodes s as Windows-1252. Runes with no Windows-1252 form make it
// return s unchanged.
func FromUTF8(s string) string {
	result, _, err := transform.String(charmap.Windows1252.NewEncoder(), s)
	if err != nil {
		return s
	}
	return result
}
