package parser

// SplitDefinitions cuts the tokens of a file into one token sequence per
// class definition. A definition ends with the brace that closes its body.
// Tokens left over after the last body form a final sequence of their own
// so that parsing it reports the problem.
func SplitDefinitions(tokens []Token) [][]Token {
	var defs [][]Token
	depth := 0
	start := 0
	n := len(tokens)
	if n > 0 && tokens[n-1].Kind == TokenEOF {
		n--
	}
	for i := 0; i < n; i++ {
		switch tokens[i].Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket:
			if depth > 0 {
				depth--
			}
		case TokenRBrace:
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				defs = append(defs, tokens[start:i+1])
				start = i + 1
			}
		}
	}
	if start < n {
		defs = append(defs, tokens[start:n])
	}
	return defs
}
