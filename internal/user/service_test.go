package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/auth"
	assignmentDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/assignment"
	userDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/wbs-tracker/internal/transport"
	"github.com/frahmantamala/wbs-tracker/internal/user"
	userPostgres "github.com/frahmantamala/wbs-tracker/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("User registry", func() {
	var (
		db      *gorm.DB
		audit   *recordingAudit
		service *user.Service
		handler *user.Handler
		ctx     context.Context
		admin   *internal.Identity
	)

	BeforeEach(func() {
		db = newTestDB()
		audit = &recordingAudit{}
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = user.NewService(userPostgres.NewUserRepository(db), plainHasher{}, audit, auth.NewRoleCapabilities(), lg)
		handler = user.NewHandler(transport.NewBaseHandler(lg), service)

		Expect(db.Create([]*userDatamodel.User{
			{ID: "u-admin", Name: "Ada Admin", Username: "ada", Role: auth.RoleAdmin, PasswordHash: "x"},
			{ID: "u-staff", Name: "Sam Staff", Username: "sam", Role: auth.RoleStaff, PasswordHash: "x"},
		}).Error).To(Succeed())
		Expect(db.Create(&assignmentDatamodel.UserTask{UserID: "u-staff", TaskID: "t-1"}).Error).To(Succeed())
		Expect(db.Create(&assignmentDatamodel.UserProject{UserID: "u-staff", ProjectID: "p-1"}).Error).To(Succeed())

		admin = &internal.Identity{UserID: "u-admin", Username: "ada", Role: auth.RoleAdmin}
		ctx = internal.ContextWithIdentity(context.Background(), admin)
	})

	Describe("List", func() {
		It("returns users with their assignment lists", func() {
			users, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))

			var sam *user.User
			for _, u := range users {
				if u.ID == "u-staff" {
					sam = u
				}
			}
			Expect(sam).NotTo(BeNil())
			Expect(sam.TasksAssign).To(Equal([]string{"t-1"}))
			Expect(sam.ProjectAssign).To(Equal([]string{"p-1"}))
		})
	})

	Describe("Create", func() {
		It("stores a hashed password and audits the action", func() {
			u, err := service.Create(ctx, user.CreateUserDTO{Name: "Max", Username: "max", Password: "pw", Role: auth.RoleManager})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).NotTo(BeEmpty())

			var row userDatamodel.User
			Expect(db.First(&row, "id = ?", u.ID).Error).To(Succeed())
			Expect(row.PasswordHash).To(Equal("hashed:pw"))

			call := audit.last()
			Expect(call.Actor).To(Equal("u-admin"))
			Expect(call.Action).To(Equal("Added user: max"))
			Expect(call.Status).To(Equal("success"))
		})

		It("defaults the role to staff", func() {
			u, err := service.Create(ctx, user.CreateUserDTO{Name: "Kim", Username: "kim", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleStaff))
		})

		It("rejects a taken username", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{Name: "Sam 2", Username: "sam", Password: "pw"})
			Expect(errors.Is(err, internal.ErrUsernameTaken)).To(BeTrue())
			Expect(audit.last().Status).To(Equal("failure"))
		})

		It("rejects an unknown role", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{Name: "Eve", Username: "eve", Password: "pw", Role: "root"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("UpdateRole", func() {
		It("changes the role", func() {
			u, err := service.UpdateRole(ctx, "u-staff", user.UpdateRoleDTO{Role: auth.RoleManager})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleManager))
			Expect(audit.last().Action).To(Equal("Changed role to manager"))
		})

		It("returns not found for unknown users", func() {
			_, err := service.UpdateRole(ctx, "u-404", user.UpdateRoleDTO{Role: auth.RoleManager})
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("Me", func() {
		It("returns the caller and its capabilities", func() {
			me, err := service.Me(internal.ContextWithIdentity(context.Background(), &internal.Identity{UserID: "u-staff", Role: auth.RoleStaff}))
			Expect(err).NotTo(HaveOccurred())
			Expect(me.User.Username).To(Equal("sam"))
			Expect(me.Capabilities).To(ConsistOf(auth.CapUpdateProgress))
		})
	})

	Describe("HTTP", func() {
		It("GET /api/user wraps users and filters by name", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/user?q=SAM", nil)
			w := httptest.NewRecorder()
			handler.GetUsers(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Users []map[string]interface{} `json:"users"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Users).To(HaveLen(1))
			Expect(resp.Users[0]).To(HaveKeyWithValue("username", "sam"))
			Expect(resp.Users[0]).To(HaveKey("tasks_assign"))
			Expect(resp.Users[0]).To(HaveKey("project_assign"))
			Expect(resp.Users[0]).NotTo(HaveKey("PasswordHash"))
		})

		It("GET /api/user with a blank query returns everyone and a notice", func() {
			w := httptest.NewRecorder()
			handler.GetUsers(w, httptest.NewRequest(http.MethodGet, "/api/user?q=", nil))

			var resp user.UsersResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Users).To(HaveLen(2))
			Expect(w.Header().Get(transport.FilterNoticeHeader)).To(Equal("Please enter a search term."))
		})

		It("GET /api/user/{id} answers 404 for unknown ids", func() {
			r := chi.NewRouter()
			r.Get("/api/user/{id}", handler.GetUser)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/u-404", nil))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("POST /api/user creates a user", func() {
			body := bytes.NewBufferString(`{"name":"Lee","username":"lee","password":"pw","role":"staff"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/user", body).WithContext(ctx)
			w := httptest.NewRecorder()
			handler.CreateUser(w, req)
			Expect(w.Code).To(Equal(http.StatusCreated))
		})

		It("POST /api/user answers 409 for a taken username", func() {
			body := bytes.NewBufferString(`{"name":"Sam","username":"sam","password":"pw"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/user", body).WithContext(ctx)
			w := httptest.NewRecorder()
			handler.CreateUser(w, req)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})
})
