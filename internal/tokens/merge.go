package tokens

// CombineRemovingErroneousLine merges the last good token stream of a document with
// the stream of a parse that failed at errorLine (0-based).
//
// Tokens of newPartial before errorLine are kept, tokens of previousGood after
// errorLine are kept, and tokens on errorLine itself are dropped from both. The
// result is sorted. Tokens are single-line, so "on the error line" is the same as
// "overlapping the error line".
func CombineRemovingErroneousLine(errorLine uint32, previousGood, newPartial []Token) []Token {
	merged := make([]Token, 0, len(previousGood)+len(newPartial))

	for _, tok := range newPartial {
		if tok.Line < errorLine {
			merged = append(merged, tok)
		}
	}

	for _, tok := range previousGood {
		if tok.Line > errorLine {
			merged = append(merged, tok)
		}
	}

	return Sort(merged)
}
