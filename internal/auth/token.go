package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/techaway/backend/internal/domain"
	apperrors "github.com/techaway/backend/pkg/util"
)

// TokenPurpose restricts each signed token to a single use site.
type TokenPurpose string

const (
	PurposeIdentity TokenPurpose = "identity"
	PurposeAccess   TokenPurpose = "access"
	PurposeRefresh  TokenPurpose = "refresh"
	PurposeConfirm  TokenPurpose = "confirm"
	PurposeReset    TokenPurpose = "reset"
)

// Profile carries user-facing claims embedded in identity tokens.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Claims describes the JWT payload for every token purpose.
type Claims struct {
	UserID  string        `json:"uid"`
	Roles   []domain.Role `json:"roles,omitempty"`
	Purpose TokenPurpose  `json:"purpose"`
	Profile *Profile      `json:"profile,omitempty"`
	jwt.RegisteredClaims
}

// TokenTTLs bundles lifetimes per purpose.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
	Confirm time.Duration
	Reset   time.Duration
}

// TokenManager issues and validates HS256 tokens bound to a fixed issuer.
type TokenManager struct {
	secret []byte
	issuer string
	ttls   TokenTTLs
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer string, ttls TokenTTLs) *TokenManager {
	if ttls.Access <= 0 {
		ttls.Access = 2 * time.Hour
	}
	if ttls.Refresh <= 0 {
		ttls.Refresh = 14 * 24 * time.Hour
	}
	if ttls.Confirm <= 0 {
		ttls.Confirm = time.Hour
	}
	if ttls.Reset <= 0 {
		ttls.Reset = time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttls: ttls}
}

// SignIdentity issues the profile-bearing identity token.
func (tm *TokenManager) SignIdentity(user *domain.User) (string, time.Time, error) {
	return tm.sign(&Claims{
		UserID:  user.ID,
		Purpose: PurposeIdentity,
		Profile: &Profile{
			Username: user.Username,
			Email:    user.Email,
			Name:     user.Name,
			Phone:    user.Phone,
			Address:  user.Address,
		},
	}, tm.ttls.Access)
}

// SignAccess issues the role-bearing access token.
func (tm *TokenManager) SignAccess(user *domain.User) (string, time.Time, error) {
	return tm.sign(&Claims{
		UserID:  user.ID,
		Roles:   user.Roles,
		Purpose: PurposeAccess,
	}, tm.ttls.Access)
}

// SignRefresh issues the refresh token carrying only the user id.
func (tm *TokenManager) SignRefresh(userID string) (string, time.Time, error) {
	return tm.sign(&Claims{UserID: userID, Purpose: PurposeRefresh}, tm.ttls.Refresh)
}

// SignConfirm issues a short-lived email-confirmation token.
func (tm *TokenManager) SignConfirm(userID string) (string, time.Time, error) {
	return tm.sign(&Claims{UserID: userID, Purpose: PurposeConfirm}, tm.ttls.Confirm)
}

// SignReset issues a short-lived password-reset token.
func (tm *TokenManager) SignReset(userID string) (string, time.Time, error) {
	return tm.sign(&Claims{UserID: userID, Purpose: PurposeReset}, tm.ttls.Reset)
}

func (tm *TokenManager) sign(claims *Claims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		// iat/exp have second granularity; the jti keeps two tokens
		// signed for the same user in the same second distinct.
		ID:        uuid.NewString(),
		Subject:   claims.UserID,
		Issuer:    tm.issuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates signature, issuer and expiry, and checks the token was
// minted for the expected purpose. Expiry is the only failure surfaced as
// TOKEN_EXPIRED; everything else collapses into UNAUTHORIZED.
func (tm *TokenManager) Parse(tokenStr string, purpose TokenPurpose) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpired("token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperrors.NewUnauthorized("invalid token claims")
	}
	if claims.Purpose != purpose {
		return nil, apperrors.NewUnauthorized("token purpose mismatch")
	}
	return claims, nil
}

// HashToken digests a raw token value for at-rest storage and lookup.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
