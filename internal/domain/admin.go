package domain

import "time"

// AdminSession marks a shopper session that passed the admin unlock.
type AdminSession struct {
	SessionID  string
	UnlockedAt time.Time
}
