package tokens

import (
	"sort"
)

// Sort orders tokens by line, then column. The sort is stable and in place;
// the slice is returned for convenience.
func Sort(tokens []Token) []Token {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Line != tokens[j].Line {
			return tokens[i].Line < tokens[j].Line
		}
		return tokens[i].Column < tokens[j].Column
	})
	return tokens
}

// Normalize sorts a copy of tokens and drops every token that overlaps the
// previously kept token on the same line. The first token at a position wins.
func Normalize(tokens []Token) []Token {
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	Sort(sorted)

	out := sorted[:0]
	for _, tok := range sorted {
		if n := len(out); n > 0 {
			prev := out[n-1]
			if prev.Line == tok.Line && tok.Column < prev.End() {
				continue
			}
		}
		out = append(out, tok)
	}

	return out
}

// MakeRelative encodes sorted tokens in the LSP relative format.
// Each token becomes [deltaLine, deltaStartChar, length, tokenType, tokenModifiers],
// where deltaStartChar is relative to the previous token only on the same line.
// The input must already be sorted; unsorted input produces invalid data.
func MakeRelative(tokens []Token) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	encoded := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaChar := token.Column
		if deltaLine == 0 {
			deltaChar = token.Column - prevChar
		}

		encoded = append(encoded,
			deltaLine,
			deltaChar,
			token.Length,
			uint32(token.Type),
			uint32(token.Modifiers),
		)

		prevLine = token.Line
		prevChar = token.Column
	}

	return encoded
}

// Decode reverses MakeRelative. Trailing data that does not form a full
// five-integer group is ignored.
func Decode(data []uint32) []Token {
	tokens := make([]Token, 0, len(data)/5)
	var line, char uint32

	for i := 0; i+5 <= len(data); i += 5 {
		deltaLine, deltaChar := data[i], data[i+1]
		if deltaLine == 0 {
			char += deltaChar
		} else {
			line += deltaLine
			char = deltaChar
		}

		tokens = append(tokens, Token{
			Line:      line,
			Column:    char,
			Length:    data[i+2],
			Type:      Type(data[i+3]),
			Modifiers: Modifier(data[i+4]),
		})
	}

	return tokens
}
