// Package cache provides fast session lookup in front of durable session
// storage. Entries expire on their own; the durable repository stays the
// source of truth.
package cache

import (
	"context"

	"github.com/openlore/crosspost/domain"
)

// SessionStore is a read-through cache of active sessions keyed by id.
type SessionStore interface {
	Set(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, bool)
	Delete(ctx context.Context, id string) error
}
