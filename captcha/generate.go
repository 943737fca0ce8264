package captcha

import "math/rand"

// DebugChallenge is the fixed challenge text used in debug mode.
const DebugChallenge = "ABC123"

// DefaultChallengeLength is the challenge text length used by the zero
// Generator.
const DefaultChallengeLength = 6

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator draws random challenge strings. This is anti-script, not
// anti-adversary randomness; the commitment salt is what ties a token
// to a single round.
type Generator struct {
	Length int
}

// Generate returns a fresh challenge string. With debug set it returns
// DebugChallenge so the full image+token round-trip is reproducible.
func (g Generator) Generate(debug bool) string {
	if debug {
		return DebugChallenge
	}
	n := g.Length
	if n <= 0 {
		n = DefaultChallengeLength
	}
	return randomString(n, alphanumeric)
}

func randomString(n int, charset string) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
