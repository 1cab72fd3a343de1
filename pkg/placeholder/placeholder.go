package placeholder

import "strings"

// Token is a bracketed marker in template text that is replaced with
// per-recipient data at render time.
type Token string

// Tokens recognized by the engine. Template bodies may contain any subset of
// these, any number of times.
const (
	TokenSchoolName          Token = "[schoolName]"
	TokenCoachLastName       Token = "[coachLastName]"
	TokenCoachFullNames      Token = "[coachFullNames]"
	TokenPersonalizedMessage Token = "[personalizedMessage]"
)

// recognized lists every token the engine substitutes, in a stable order.
var recognized = []Token{
	TokenSchoolName,
	TokenCoachLastName,
	TokenCoachFullNames,
	TokenPersonalizedMessage,
}

// Recognized returns the full set of tokens the engine substitutes.
func Recognized() []Token {
	out := make([]Token, len(recognized))
	copy(out, recognized)
	return out
}

// Bindings maps tokens to their per-recipient replacement values.
type Bindings map[Token]string

// Render substitutes every occurrence of each recognized token in body with
// its bound value. Tokens without a binding are replaced with the empty
// string, so the output never contains a recognized token.
//
// Render is a pure function: same body and bindings always produce the same
// output, and rendering an already-rendered body is a no-op as long as the
// binding values themselves are not token-shaped.
func Render(body string, b Bindings) string {
	if body == "" {
		return body
	}

	pairs := make([]string, 0, len(recognized)*2)
	for _, tok := range recognized {
		pairs = append(pairs, string(tok), b[tok])
	}

	// Replacer performs literal (non-regex) replacement in a single pass,
	// so user-provided binding values are never interpreted as patterns.
	return strings.NewReplacer(pairs...).Replace(body)
}

// Check reports which required tokens are present in a template body.
type Check struct {
	AllPresent bool
	Missing    []Token
}

// CheckRequired reports whether body contains every token in required.
// The result is advisory: callers warn on missing tokens but never hard-block
// a send over them.
func CheckRequired(body string, required []Token) Check {
	c := Check{AllPresent: true}
	for _, tok := range required {
		if !strings.Contains(body, string(tok)) {
			c.AllPresent = false
			c.Missing = append(c.Missing, tok)
		}
	}
	return c
}
