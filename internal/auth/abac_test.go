package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/wbs-tracker/internal"
	assignmentDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/assignment"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Task progress access", func() {
	var guard *ProgressGuard

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&assignmentDatamodel.UserTask{})).To(Succeed())
		Expect(db.Create(&assignmentDatamodel.UserTask{UserID: "staff-1", TaskID: "task-1"}).Error).To(Succeed())

		guard = NewProgressGuard(NewSQLAssignmentLookup(sqlx.NewDb(sqlDB, "sqlite3")), NewABACPolicy(NewRoleCapabilities()))
	})

	authorize := func(taskID string, id *internal.Identity) error {
		ctx := context.Background()
		if id != nil {
			ctx = internal.ContextWithIdentity(ctx, id)
		}
		return guard.AuthorizeProgress(ctx, taskID)
	}

	It("lets staff update tasks assigned to them", func() {
		Expect(authorize("task-1", &internal.Identity{UserID: "staff-1", Role: RoleStaff})).To(Succeed())
	})

	It("forbids staff on tasks outside their tasks_assign", func() {
		Expect(errors.Is(authorize("task-2", &internal.Identity{UserID: "staff-1", Role: RoleStaff}), internal.ErrNotAssigned)).To(BeTrue())
		Expect(errors.Is(authorize("task-1", &internal.Identity{UserID: "staff-2", Role: RoleStaff}), internal.ErrNotAssigned)).To(BeTrue())
	})

	It("lets managers update any task", func() {
		Expect(authorize("task-2", &internal.Identity{UserID: "mgr-1", Role: RoleManager})).To(Succeed())
	})

	It("forbids unknown roles", func() {
		err := authorize("task-1", &internal.Identity{UserID: "staff-1", Role: "guest"})
		Expect(errors.Is(err, internal.ErrMissingCapability)).To(BeTrue())
	})

	It("requires an identity", func() {
		Expect(errors.Is(authorize("task-1", nil), internal.ErrInvalidToken)).To(BeTrue())
	})
})
