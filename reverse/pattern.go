package reverse

import "strings"

// Token is a placeholder inside a route pattern.
type Token struct {
	// Text is the literal token text, including delimiters (e.g. "<id>").
	Text string
	// Name is the identifier between the delimiters. Empty for anonymous
	// tokens.
	Name string
}

// Anonymous reports whether the token carries no identifier.
func (t Token) Anonymous() bool {
	return t.Name == ""
}

// Pattern is a route pattern split into literal segments and tokens.
//
// For a pattern with n tokens there are always n+1 segments: segment i
// precedes token i, and the last segment trails the final token.
type Pattern struct {
	source   string
	segments []string
	tokens   []Token
}

// ParsePattern splits a pattern string of the form "/a/<>/b/<name>" into
// its literal segments and tokens. A token is "<", zero or more word
// characters ([A-Za-z0-9_]), then ">". Anything else is literal text, so
// parsing never fails.
func ParsePattern(s string) *Pattern {
	p := &Pattern{source: s}

	idxs := tokenIndices(s)
	end := 0
	for i := 0; i < len(idxs); i += 2 {
		p.segments = append(p.segments, s[end:idxs[i]])
		end = idxs[i+1]

		text := s[idxs[i]:end]
		p.tokens = append(p.tokens, Token{
			Text: text,
			Name: text[1 : len(text)-1],
		})
	}
	p.segments = append(p.segments, s[end:])

	return p
}

// tokenIndices returns the start and end+1 indices of each token in s.
func tokenIndices(s string) []int {
	var idxs []int
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		j := i + 1
		for j < len(s) && isWordChar(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '>' {
			idxs = append(idxs, i, j+1)
			i = j
		}
	}
	return idxs
}

func isWordChar(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}

// String returns the original pattern string.
func (p *Pattern) String() string {
	return p.source
}

// Tokens returns the tokens in left-to-right order.
func (p *Pattern) Tokens() []Token {
	out := make([]Token, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// Segments returns the literal text around the tokens.
func (p *Pattern) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// NumTokens returns the number of tokens in the pattern.
func (p *Pattern) NumTokens() int {
	return len(p.tokens)
}

// Names returns the identifiers of the named tokens, in order.
func (p *Pattern) Names() []string {
	var names []string
	for _, t := range p.tokens {
		if !t.Anonymous() {
			names = append(names, t.Name)
		}
	}
	return names
}

// interleave rebuilds the URL from positional values.
// len(values) must equal len(p.tokens).
func (p *Pattern) interleave(values []string) string {
	var b strings.Builder
	b.WriteString(p.segments[0])
	for i, v := range values {
		b.WriteString(v)
		b.WriteString(p.segments[i+1])
	}
	return b.String()
}
