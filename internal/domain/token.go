package domain

import "time"

// TokenPair bundles the three tokens issued on login and refresh.
type TokenPair struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// RefreshToken is the persisted, single-use record backing a refresh token.
// TokenHash is a sha256 digest; the raw token value is never stored. DeleteAt
// is a coarse retention horizon independent of the embedded expiry claim.
type RefreshToken struct {
	ID        string
	TokenHash string
	UserID    string
	Invalid   bool
	DeleteAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
