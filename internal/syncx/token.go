package syncx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Token is an opaque history cursor. Tokens are ULIDs, so their string
// form orders lexicographically in assignment order; the zero value means
// "before everything".
type Token string

// After reports whether t orders strictly after other. ULID strings are
// fixed-width, so plain string comparison is the total order.
func (t Token) After(other Token) bool {
	return string(t) > string(other)
}

func (t Token) IsZero() bool {
	return t == ""
}

// TokenSource mints strictly increasing tokens. Safe for concurrent use.
type TokenSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	last    ulid.ULID
}

func NewTokenSource() *TokenSource {
	return &TokenSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a token strictly greater than every token minted before it
// by this source.
func (s *TokenSource) Next() Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), s.entropy)
	if err != nil || id.Compare(s.last) <= 0 {
		// entropy exhausted within the same millisecond, or clock went
		// backwards: bump off the previous token instead
		id = s.last
		for i := len(id) - 1; i >= 0; i-- {
			id[i]++
			if id[i] != 0 {
				break
			}
		}
	}
	s.last = id
	return Token(id.String())
}
