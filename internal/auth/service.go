package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/metrics"
	"golang.org/x/crypto/bcrypt"
)

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	dummyHash      []byte
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// NewService creates a new auth service. m may be nil.
func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger, m *metrics.Metrics) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	// compared against when the username is unknown, so a miss costs the
	// same bcrypt round as a wrong password.
	seed, _ := GenerateRandomToken()
	dummy, _ := bcrypt.GenerateFromPassword([]byte(seed), bcryptCost)

	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		dummyHash:      dummy,
		logger:         logger,
		metrics:        m,
	}
}

// ValidateLogin checks credentials and issues a session. Unknown users and
// wrong passwords produce the same error and no token.
func (s *Service) ValidateLogin(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if verr := dto.Validate(); verr != nil {
		s.metrics.LoginAttempt("invalid")
		return nil, verr
	}

	creds, err := s.repo.GetCredentialsByUsername(ctx, dto.Username)
	if err != nil {
		if !errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Error("failed to load credentials", "username", dto.Username, "error", err)
			return nil, internal.NewInternalError("Failed to validate credentials", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(dto.Password))
		s.metrics.LoginAttempt("failure")
		s.logger.Warn("login rejected", "username", dto.Username, "reason", "unknown user")
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.metrics.LoginAttempt("failure")
		s.logger.Warn("login rejected", "username", dto.Username, "reason", "password mismatch")
		return nil, internal.ErrInvalidCredentials
	}

	identity := creds.Identity()
	tokens, err := s.issue(identity)
	if err != nil {
		return nil, err
	}

	s.metrics.LoginAttempt("success")
	s.logger.Info("login accepted", "user_id", identity.UserID, "role", identity.Role)

	return &LoginResult{
		Valid:       true,
		UserName:    identity.Username,
		DisplayName: identity.Name,
		Role:        identity.Role,
		UserID:      identity.UserID,
		AuthTokens:  tokens,
	}, nil
}

// RefreshTokens validates refresh token and returns new tokens. The user is
// re-read so a role change made since login ends up in the new claims.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	identity, err := s.repo.GetIdentityByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return AuthTokens{}, internal.ErrInvalidToken
		}
		return AuthTokens{}, internal.NewInternalError("Failed to refresh session", err)
	}

	return s.issue(identity)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// Authenticate resolves an access token to the caller's current identity.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*internal.Identity, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	identity, err := s.repo.GetIdentityByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("Failed to load session user", err)
	}
	return identity, nil
}

func (s *Service) issue(identity *internal.Identity) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(identity)
	if err != nil {
		s.logger.Error("failed to sign access token", "user_id", identity.UserID, "error", err)
		return AuthTokens{}, internal.NewInternalError("Failed to issue session", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(identity)
	if err != nil {
		s.logger.Error("failed to sign refresh token", "user_id", identity.UserID, "error", err)
		return AuthTokens{}, internal.NewInternalError("Failed to issue session", err)
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
