package shares

import (
	"time"

	"github.com/kevinbuckley/tripwit/internal/domain"
)

// Share is the authority's record of one collaborative link. Token is
// the last path segment of the share URL; ResolvableAt models link
// propagation, resolution returns not-found before it.
type Share struct {
	domain.Share
	OwnerID      string
	Token        string
	ResolvableAt time.Time
}
