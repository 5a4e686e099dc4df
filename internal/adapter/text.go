package adapter

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LineAt returns line n of text without its line terminator, or "" past the
// last line.
func LineAt(text string, n protocol.UInteger) string {
	for i := protocol.UInteger(0); i < n; i++ {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			return ""
		}
		text = text[idx+1:]
	}

	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSuffix(text, "\r")
}

// ByteOffset converts a UTF-16 column into a byte offset in line.
func ByteOffset(line string, col protocol.UInteger) int {
	var units protocol.UInteger
	for i, r := range line {
		if units >= col {
			return i
		}
		units += protocol.UInteger(utf16.RuneLen(r))
	}
	return len(line)
}

// PrefixAt returns the word that ends at the position, made of runes accepted
// by isWord, together with the byte right before it (0 at line start).
func PrefixAt(text string, line, col protocol.UInteger, isWord func(rune) bool) (string, byte) {
	l := LineAt(text, line)
	end := ByteOffset(l, col)

	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(l[:start])
		if !isWord(r) {
			break
		}
		start -= size
	}

	var before byte
	if start > 0 {
		before = l[start-1]
	}

	return l[start:end], before
}
