package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type roleTable map[string][]string

func (t roleTable) Can(role, capability string) bool {
	for _, c := range t[role] {
		if c == capability {
			return true
		}
	}
	return false
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeError(body *bytes.Buffer) internal.ErrorCode {
	var resp struct {
		Error struct {
			Code internal.ErrorCode `json:"code"`
		} `json:"error"`
	}
	Expect(json.NewDecoder(body).Decode(&resp)).To(Succeed())
	return resp.Error.Code
}

var _ = Describe("Middleware", func() {
	var lg *slog.Logger

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	Describe("RequireCapability", func() {
		table := roleTable{"admin": {"view_logs"}, "staff": {"update_progress"}}

		serve := func(id *internal.Identity) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
			if id != nil {
				req = req.WithContext(internal.ContextWithIdentity(req.Context(), id))
			}
			w := httptest.NewRecorder()
			RequireCapability(table, lg, "view_logs")(okHandler).ServeHTTP(w, req)
			return w
		}

		It("lets a granted role through", func() {
			Expect(serve(&internal.Identity{UserID: "u1", Role: "admin"}).Code).To(Equal(http.StatusOK))
		})

		It("answers 403 when the role lacks the capability", func() {
			w := serve(&internal.Identity{UserID: "u2", Role: "staff"})
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decodeError(w.Body)).To(Equal(internal.ErrCodeMissingCapability))
		})

		It("answers 401 without an identity", func() {
			Expect(serve(nil).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("CORS", func() {
		It("echoes an allowed origin", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			w := httptest.NewRecorder()
			CORS([]string{"http://localhost:3000"})(okHandler).ServeHTTP(w, req)
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		})

		It("does not allow unknown origins", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://evil.test")
			w := httptest.NewRecorder()
			CORS([]string{"http://localhost:3000"})(okHandler).ServeHTTP(w, req)
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		})

		It("answers preflight requests", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
			req.Header.Set("Origin", "http://any.test")
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			CORS([]string{"*"})(okHandler).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(w.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("PATCH"))
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("turns a panic into a 500 envelope", func() {
			boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
			w := httptest.NewRecorder()
			RecoveryMiddleware(lg)(boom).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeError(w.Body)).To(Equal(internal.ErrorCode("INTERNAL_ERROR")))
		})
	})

	Describe("RequestID", func() {
		It("propagates the caller's trace id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(TraceHeader, "trace-1")
			w := httptest.NewRecorder()
			RequestID(okHandler).ServeHTTP(w, req)
			Expect(w.Header().Get(TraceHeader)).To(Equal("trace-1"))
		})

		It("mints a trace id when none is sent", func() {
			w := httptest.NewRecorder()
			RequestID(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Header().Get(TraceHeader)).NotTo(BeEmpty())
		})
	})

	Describe("LoggingMiddleware", func() {
		It("masks credentials in logged bodies and keeps the body readable", func() {
			var buf bytes.Buffer
			base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			var seen []byte
			echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = io.ReadAll(r.Body)
				Expect(logger.From(r.Context())).To(BeIdenticalTo(base))
				w.WriteHeader(http.StatusUnauthorized)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewBufferString(`{"username":"alice","password":"hunter2"}`))
			LoggingMiddleware(base)(echo).ServeHTTP(httptest.NewRecorder(), req)

			Expect(string(seen)).To(ContainSubstring("hunter2"))
			Expect(buf.String()).NotTo(ContainSubstring("hunter2"))
			Expect(buf.String()).To(ContainSubstring("alice"))
			Expect(buf.String()).To(ContainSubstring(`"status_code":401`))
		})
	})

	Describe("filterSensitiveJSON", func() {
		It("masks nested keys", func() {
			out := filterSensitiveBody([]byte(`{"user":{"access_token":"x","name":"n"},"items":[{"secret":"s"}]}`))
			Expect(out).To(ContainSubstring(`"access_token":"[FILTERED]"`))
			Expect(out).To(ContainSubstring(`"secret":"[FILTERED]"`))
			Expect(out).To(ContainSubstring(`"name":"n"`))
		})
	})
})
