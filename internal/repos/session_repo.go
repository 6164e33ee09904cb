package repos

import (
	"context"
	"errors"
	"time"
)

const CollectionAdminSessions = "admin_sessions"

type adminSessionDoc struct {
	ID         string    `json:"id" bson:"_id"`
	UnlockedAt time.Time `json:"unlockedAt" bson:"unlockedAt"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
}

// SessionRepo records which shopper sessions unlocked the admin panel.
type SessionRepo struct{ store DocumentStore }

func NewSessionRepo(store DocumentStore) *SessionRepo { return &SessionRepo{store: store} }

func (r *SessionRepo) Bind(ctx context.Context, sid string, ttl time.Duration) error {
	now := time.Now().UTC()
	return r.store.Set(ctx, CollectionAdminSessions, sid, adminSessionDoc{
		ID:         sid,
		UnlockedAt: now,
		ExpiresAt:  now.Add(ttl),
	})
}

// IsAdmin reports whether sid holds an unexpired admin unlock.
func (r *SessionRepo) IsAdmin(ctx context.Context, sid string) (bool, error) {
	var doc adminSessionDoc
	if err := r.store.Get(ctx, CollectionAdminSessions, sid, &doc); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return time.Now().UTC().Before(doc.ExpiresAt), nil
}

func (r *SessionRepo) Unbind(ctx context.Context, sid string) error {
	return ignoreNotFound(r.store.Delete(ctx, CollectionAdminSessions, sid))
}
