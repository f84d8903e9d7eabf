package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Credentials is what the identity check compares a login against.
type Credentials struct {
	UserID       string
	Username     string
	Name         string
	Role         string
	PasswordHash string
}

func (c *Credentials) Identity() *internal.Identity {
	return &internal.Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Name:     c.Name,
		Role:     c.Role,
	}
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult is the body of a successful identity check.
type LoginResult struct {
	Valid       bool   `json:"valid"`
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	UserID      string `json:"userId"`
	AuthTokens
}

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type RepositoryAPI interface {
	GetCredentialsByUsername(ctx context.Context, username string) (*Credentials, error)
	GetIdentityByID(ctx context.Context, userID string) (*internal.Identity, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(id *internal.Identity) (string, error)
	GenerateRefreshToken(id *internal.Identity) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type ServiceAPI interface {
	ValidateLogin(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	Authenticate(ctx context.Context, accessToken string) (*internal.Identity, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
