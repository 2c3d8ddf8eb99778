package sharing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// Deep links wrap the authority's share URL so the app can claim them:
//
//	tripwit://accept?u=<query-escaped share url>
//
// The inner URL is query-escaped in full, so its own `&` and `#` cannot
// be mistaken for wrapper delimiters; the wrapper's `?` and `=` are the
// only structural characters.

const (
	linkScheme = "tripwit"
	linkHost   = "accept"
	linkParam  = "u"
)

// WrapShareURL builds the deep link for a share URL.
func WrapShareURL(shareURL string) string {
	return linkScheme + "://" + linkHost + "?" + linkParam + "=" + url.QueryEscape(shareURL)
}

// UnwrapShareURL extracts and validates the share URL from a deep link.
func UnwrapShareURL(wrapped string) (string, error) {
	u, err := url.Parse(wrapped)
	if err != nil {
		return "", fmt.Errorf("%w: malformed share link: %v", common.ErrorValidation, err)
	}
	if u.Scheme != linkScheme || u.Host != linkHost {
		return "", fmt.Errorf("%w: not a share link: %q", common.ErrorValidation, wrapped)
	}
	inner := u.Query().Get(linkParam)
	if inner == "" {
		return "", fmt.Errorf("%w: share link carries no url", common.ErrorValidation)
	}
	iu, err := url.Parse(inner)
	if err != nil || !strings.HasPrefix(iu.Scheme, "http") || iu.Host == "" {
		return "", fmt.Errorf("%w: share link wraps an invalid url %q", common.ErrorValidation, inner)
	}
	return inner, nil
}
