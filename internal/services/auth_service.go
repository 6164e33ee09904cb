package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

var (
	ErrBadCode       = errors.New("invalid access code")
	ErrAdminDisabled = errors.New("admin access not configured")
)

type AuthService struct {
	Sessions *repos.SessionRepo
	TTL      time.Duration
	hash     []byte
}

// NewAuthService takes the bcrypt hash of the admin access code, or the
// plain code when no hash is configured. With neither the admin panel stays
// locked.
func NewAuthService(sessions *repos.SessionRepo, code, codeHash string, ttl time.Duration) (*AuthService, error) {
	s := &AuthService{Sessions: sessions, TTL: ttl}
	switch {
	case codeHash != "":
		s.hash = []byte(codeHash)
	case code != "":
		h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s.hash = h
	}
	return s, nil
}

// Unlock binds sid as an admin session when code matches.
func (s *AuthService) Unlock(ctx context.Context, sid, code string) (domain.AdminSession, error) {
	if len(s.hash) == 0 {
		return domain.AdminSession{}, ErrAdminDisabled
	}
	if bcrypt.CompareHashAndPassword(s.hash, []byte(code)) != nil {
		return domain.AdminSession{}, ErrBadCode
	}
	if err := s.Sessions.Bind(ctx, sid, s.TTL); err != nil {
		return domain.AdminSession{}, err
	}
	return domain.AdminSession{SessionID: sid, UnlockedAt: time.Now().UTC()}, nil
}

func (s *AuthService) Lock(ctx context.Context, sid string) error {
	return s.Sessions.Unbind(ctx, sid)
}

func (s *AuthService) IsAdmin(ctx context.Context, sid string) bool {
	if sid == "" {
		return false
	}
	ok, err := s.Sessions.IsAdmin(ctx, sid)
	return err == nil && ok
}
