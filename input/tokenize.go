package input

import "strings"

// token is either a run of plain text or a single backslash-escaped character.
type token struct {
	escaped bool
	text    string
}

// tokenize splits s into plain and escaped tokens:
//
//	tokenize(`foo\=bar\\baz`, `\=`) => "foo", Escaped("="), "bar", Escaped(`\`), "baz"
//
// A backslash followed by a character outside special is kept verbatim
// together with that character, and so is a trailing backslash.
func tokenize(s string, special string) []token {
	tokens := []token{{}}
	var current strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '\\' {
			current.WriteRune(c)
			continue
		}
		if i+1 >= len(runes) {
			current.WriteRune('\\')
			continue
		}
		i++
		next := runes[i]
		if strings.ContainsRune(special, next) {
			tokens[len(tokens)-1].text = current.String()
			current.Reset()
			tokens = append(tokens, token{escaped: true, text: string(next)}, token{})
		} else {
			current.WriteRune('\\')
			current.WriteRune(next)
		}
	}
	tokens[len(tokens)-1].text = current.String()
	return tokens
}

func joinTokens(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.text)
	}
	return b.String()
}
