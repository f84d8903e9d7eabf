package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Auth Handler", func() {
	var (
		handler *Handler
		repo    *mockRepository
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = newMockRepository()
		tokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		service := NewService(repo, tokenGen, bcrypt.MinCost, lg, nil)
		handler = NewHandler(transport.NewBaseHandler(lg), service)
	})

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)
		return w
	}

	Describe("POST /api/auth", func() {
		It("returns the session for valid credentials", func() {
			w := login(`{"username":"alice","password":"correct_password"}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("valid", true))
			Expect(body).To(HaveKeyWithValue("userName", "alice"))
			Expect(body).To(HaveKeyWithValue("displayName", "Alice Staff"))
			Expect(body).To(HaveKeyWithValue("role", "staff"))
			Expect(body).To(HaveKeyWithValue("userId", "u-1"))
			Expect(body).To(HaveKey("access_token"))
		})

		It("answers valid:false and no token on mismatched credentials", func() {
			w := login(`{"username":"alice","password":"nope"}`)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("valid", false))
			Expect(body).To(HaveKeyWithValue("message", "Invalid username or password."))
			Expect(body).NotTo(HaveKey("access_token"))
		})

		It("answers 400 when a field is empty", func() {
			w := login(`{"username":"","password":"x"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var body LoginFailure
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.Valid).To(BeFalse())
			Expect(body.Message).To(Equal("username is required"))
		})

		It("answers 400 for a malformed body", func() {
			Expect(login(`{"username":`).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("AuthMiddleware", func() {
		var seen *internal.Identity
		protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = internal.IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		BeforeEach(func() { seen = nil })

		It("puts the caller's identity into the request context", func() {
			result, err := handler.Service.ValidateLogin(context.Background(), LoginDTO{Username: "mona", Password: "correct_password"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			req.Header.Set("Authorization", "Bearer "+result.AccessToken)
			w := httptest.NewRecorder()
			handler.AuthMiddleware(protected).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(seen).NotTo(BeNil())
			Expect(seen.UserID).To(Equal("u-2"))
			Expect(seen.Role).To(Equal(RoleManager))
		})

		It("rejects requests without a bearer token", func() {
			w := httptest.NewRecorder()
			handler.AuthMiddleware(protected).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(seen).To(BeNil())
		})

		It("rejects garbage tokens", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			req.Header.Set("Authorization", "Bearer not-a-jwt")
			w := httptest.NewRecorder()
			handler.AuthMiddleware(protected).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /api/auth/logout", func() {
		It("returns 204 for a valid token", func() {
			result, err := handler.Service.ValidateLogin(context.Background(), LoginDTO{Username: "alice", Password: "correct_password"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			req.Header.Set("Authorization", "Bearer "+result.AccessToken)
			w := httptest.NewRecorder()
			handler.Logout(w, req)
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})
	})

	Describe("POST /api/auth/refresh", func() {
		It("rejects an empty refresh token", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(`{"refresh_token":""}`))
			w := httptest.NewRecorder()
			handler.RefreshToken(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
