package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock RepositoryAPI for testing
type mockRepository struct {
	byUsername    map[string]*Credentials
	returnError   bool
	errorToReturn error
}

func newMockRepository() *mockRepository {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockRepository{
		byUsername: map[string]*Credentials{
			"alice": {UserID: "u-1", Username: "alice", Name: "Alice Staff", Role: RoleStaff, PasswordHash: string(hashed)},
			"mona":  {UserID: "u-2", Username: "mona", Name: "Mona Manager", Role: RoleManager, PasswordHash: string(hashed)},
		},
	}
}

func (m *mockRepository) GetCredentialsByUsername(ctx context.Context, username string) (*Credentials, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if c, ok := m.byUsername[username]; ok {
		return c, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockRepository) GetIdentityByID(ctx context.Context, userID string) (*internal.Identity, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	for _, c := range m.byUsername {
		if c.UserID == userID {
			return c.Identity(), nil
		}
	}
	return nil, internal.ErrUserNotFound
}

const (
	accessSecret  = "test-access-secret-0123456789abcdef"
	refreshSecret = "test-refresh-secret-0123456789abcdef"
)

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockRepository
		tokenGen *JWTTokenGenerator
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	})

	ginkgo.Describe("ValidateLogin", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("returns the identity and a token pair", func() {
				result, err := service.ValidateLogin(ctx, LoginDTO{Username: "alice", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.Valid).To(gomega.BeTrue())
				gomega.Expect(result.UserName).To(gomega.Equal("alice"))
				gomega.Expect(result.DisplayName).To(gomega.Equal("Alice Staff"))
				gomega.Expect(result.Role).To(gomega.Equal(RoleStaff))
				gomega.Expect(result.UserID).To(gomega.Equal("u-1"))
				gomega.Expect(result.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(result.RefreshToken).ToNot(gomega.Equal(result.AccessToken))

				claims, err := service.ValidateAccessToken(result.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("u-1"))
				gomega.Expect(claims.Role).To(gomega.Equal(RoleStaff))
			})
		})

		ginkgo.Context("when credentials do not match", func() {
			ginkgo.It("rejects a wrong password without issuing a session", func() {
				result, err := service.ValidateLogin(ctx, LoginDTO{Username: "alice", Password: "wrong"})
				gomega.Expect(result).To(gomega.BeNil())
				gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
			})

			ginkgo.It("rejects an unknown user with the same error", func() {
				result, err := service.ValidateLogin(ctx, LoginDTO{Username: "nobody", Password: "correct_password"})
				gomega.Expect(result).To(gomega.BeNil())
				gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
			})

			ginkgo.It("does not match usernames case-insensitively", func() {
				_, err := service.ValidateLogin(ctx, LoginDTO{Username: "ALICE", Password: "correct_password"})
				gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when a field is empty", func() {
			ginkgo.It("returns a validation error", func() {
				_, err := service.ValidateLogin(ctx, LoginDTO{Username: "alice", Password: "  "})
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.StatusCode).To(gomega.Equal(400))
				gomega.Expect(appErr.GetDetailedMessage()).To(gomega.Equal("password is required"))
			})
		})

		ginkgo.Context("when the repository fails", func() {
			ginkgo.It("returns an internal error", func() {
				mockRepo.returnError = true
				mockRepo.errorToReturn = errors.New("connection refused")

				_, err := service.ValidateLogin(ctx, LoginDTO{Username: "alice", Password: "correct_password"})
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.StatusCode).To(gomega.Equal(500))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("issues a new pair carrying the current role", func() {
			result, err := service.ValidateLogin(ctx, LoginDTO{Username: "alice", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			mockRepo.byUsername["alice"].Role = RoleManager

			tokens, err := service.RefreshTokens(ctx, result.RefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Role).To(gomega.Equal(RoleManager))
		})

		ginkgo.It("rejects an access token used as refresh token", func() {
			result, err := service.ValidateLogin(ctx, LoginDTO{Username: "alice", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, result.AccessToken)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("resolves a token to the stored identity", func() {
			result, err := service.ValidateLogin(ctx, LoginDTO{Username: "mona", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			id, err := service.Authenticate(ctx, result.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(id.UserID).To(gomega.Equal("u-2"))
			gomega.Expect(id.Role).To(gomega.Equal(RoleManager))
		})

		ginkgo.It("rejects tokens of deleted users", func() {
			result, err := service.ValidateLogin(ctx, LoginDTO{Username: "mona", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			delete(mockRepo.byUsername, "mona")

			_, err = service.Authenticate(ctx, result.AccessToken)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("reports expired tokens", func() {
			expired := NewJWTTokenGenerator(accessSecret, refreshSecret, -time.Minute, time.Hour)
			token, err := expired.GenerateAccessToken(&internal.Identity{UserID: "u-1"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.Authenticate(ctx, token)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
		})

		ginkgo.It("rejects tokens signed with another secret", func() {
			other := NewJWTTokenGenerator("another-access-secret-0123456789abcdef", refreshSecret, time.Minute, time.Hour)
			token, err := other.GenerateAccessToken(&internal.Identity{UserID: "u-1"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.Authenticate(ctx, token)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("produces a bcrypt hash that verifies", func() {
			hash, err := service.HashPassword("s3cret")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash).ToNot(gomega.Equal("s3cret"))
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret"))).To(gomega.Succeed())
		})
	})
})

var _ = ginkgo.Describe("RoleCapabilities", func() {
	caps := NewRoleCapabilities()

	ginkgo.It("grants staff only progress updates", func() {
		gomega.Expect(caps.Capabilities(RoleStaff)).To(gomega.ConsistOf(CapUpdateProgress))
		gomega.Expect(caps.Can(RoleStaff, CapAssign)).To(gomega.BeFalse())
	})

	ginkgo.It("keeps log viewing and user management for admins", func() {
		gomega.Expect(caps.Can(RoleAdmin, CapViewLogs)).To(gomega.BeTrue())
		gomega.Expect(caps.Can(RoleManager, CapViewLogs)).To(gomega.BeFalse())
		gomega.Expect(caps.Can(RoleManager, CapManageUsers)).To(gomega.BeFalse())
		gomega.Expect(caps.Can(RoleManager, CapAssign)).To(gomega.BeTrue())
	})

	ginkgo.It("grants nothing to unknown roles", func() {
		gomega.Expect(caps.Capabilities("guest")).To(gomega.BeEmpty())
		gomega.Expect(caps.Can("guest", CapUpdateProgress)).To(gomega.BeFalse())
	})
})
