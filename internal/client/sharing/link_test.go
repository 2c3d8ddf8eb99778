package sharing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/common"
)

func TestLinkRoundtrip(t *testing.T) {
	urls := []string{
		"https://sync.tripwit.example/api/shares/abc123",
		"https://sync.tripwit.example/api/shares/abc?x=1&y=2",
		"https://sync.tripwit.example/api/shares/abc#frag",
		"https://sync.tripwit.example/api/shares/a%20b?q=r&s=t#u",
	}
	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			wrapped := WrapShareURL(u)
			assert.True(t, strings.HasPrefix(wrapped, "tripwit://accept?u="))
			// The inner URL's own delimiters never leak into the wrapper.
			assert.NotContains(t, wrapped[len("tripwit://accept?u="):], "&")
			assert.NotContains(t, wrapped, "#")

			got, err := UnwrapShareURL(wrapped)
			require.NoError(t, err)
			assert.Equal(t, u, got)
		})
	}
}

func TestUnwrapRejectsBadLinks(t *testing.T) {
	bad := []string{
		"https://accept?u=https%3A%2F%2Fx.example",  // wrong scheme
		"tripwit://other?u=https%3A%2F%2Fx.example", // wrong host
		"tripwit://accept",                          // no param
		"tripwit://accept?u=not-a-url",              // inner not http(s)
		"://",
	}
	for _, w := range bad {
		_, err := UnwrapShareURL(w)
		assert.ErrorIs(t, err, common.ErrorValidation, w)
	}
}
