package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/types"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrTokenRevoked = errors.New("token is blacklisted")
)

type Options struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

var opts Options

// Init must run before any token is issued or verified.
func Init(o Options) error {
	if o.Secret == "" {
		return fmt.Errorf("JWT secret is not set")
	}
	if o.Issuer == "" {
		o.Issuer = "timetrack"
	}
	if o.AccessTTL <= 0 {
		o.AccessTTL = 5 * time.Minute
	}
	if o.RefreshTTL <= 0 {
		o.RefreshTTL = 24 * time.Hour
	}

	opts = o
	return nil
}

// IssuePair returns a fresh access and refresh token for the user.
func IssuePair(user *models.User) (types.TokenPair, error) {
	access, err := IssueAccess(user)
	if err != nil {
		return types.TokenPair{}, err
	}

	refresh, err := sign(user, TokenTypeRefresh, opts.RefreshTTL)
	if err != nil {
		return types.TokenPair{}, err
	}

	return types.TokenPair{Access: access, Refresh: refresh}, nil
}

func IssueAccess(user *models.User) (string, error) {
	return sign(user, TokenTypeAccess, opts.AccessTTL)
}

func sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	if opts.Secret == "" {
		return "", fmt.Errorf("auth not initialized")
	}

	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		IsStaff:   user.IsStaff,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(opts.Secret))
}

// Verify parses the token and checks signature, expiry, issuer and type.
func Verify(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(opts.Secret), nil
	}, jwt.WithIssuer(opts.Issuer), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TokenType != tokenType || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: wrong token type", ErrInvalidToken)
	}

	return claims, nil
}

func VerifyAccess(tokenString string) (*Claims, error) {
	return Verify(tokenString, TokenTypeAccess)
}
