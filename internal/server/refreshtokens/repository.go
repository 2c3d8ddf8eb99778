package refreshtokens

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (userID string, err error)
	Delete(ctx context.Context, token string) error
}
