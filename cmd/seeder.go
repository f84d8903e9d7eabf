package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	assignmentDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/assignment"
	projectDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/user"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, a project and its tasks for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if err := seed(cmd.Context(), gormDB, cfg.Security.BCryptCost, cfg.WBS.HoursPerManday); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("Seeding complete")
	},
}

type seedUser struct {
	Username string
	Name     string
	Role     string
}

var seedUsers = []seedUser{
	{"admin", "Ada Admin", "admin"},
	{"manager", "Max Manager", "manager"},
	{"staff", "Sam Staff", "staff"},
}

func seed(ctx context.Context, db *gorm.DB, bcryptCost int, hoursPerManday float64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clearData {
			for _, table := range []string{"wbs_logs", "wbs_user_tasks", "wbs_user_projects", "wbs_tasks", "wbs_projects", "wbs_users"} {
				if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
					return fmt.Errorf("clear %s: %w", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
		if err != nil {
			return err
		}

		ids := make(map[string]string, len(seedUsers))
		for _, su := range seedUsers {
			var existing userDatamodel.User
			err := tx.Where("username = ?", su.Username).First(&existing).Error
			if err == nil {
				fmt.Println("user already exists:", su.Username)
				ids[su.Role] = existing.ID
				continue
			}
			u := userDatamodel.User{
				ID:           uuid.NewString(),
				Name:         su.Name,
				Username:     su.Username,
				Email:        su.Username + "@example.com",
				Role:         su.Role,
				PasswordHash: string(hash),
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("insert user %s: %w", su.Username, err)
			}
			ids[su.Role] = u.ID
			fmt.Println("Seeded user:", su.Username)
		}

		var count int64
		if err := tx.Model(&projectDatamodel.Project{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			fmt.Println("projects already present; skipping sample project")
			return nil
		}

		start := time.Now().Truncate(24 * time.Hour)
		end := start.AddDate(0, 3, 0)
		p := projectDatamodel.Project{
			ID:          uuid.NewString(),
			Name:        "Website Revamp",
			Description: "Redesign and relaunch the public website",
			StartDate:   &start,
			EndDate:     &end,
			Status:      "in_progress",
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		tasks := []taskDatamodel.Task{
			{Name: "Gather requirements", Status: "done", Duration: 16, Priority: "high"},
			{Name: "Build landing page", Status: "in_progress", Duration: 4, Priority: "medium"},
			{Name: "Write release notes", Status: "todo", Priority: "low"},
		}
		for i := range tasks {
			tasks[i].ID = uuid.NewString()
			tasks[i].ProjectID = p.ID
			tasks[i].Mandays = tasks[i].Duration / hoursPerManday
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return fmt.Errorf("insert task: %w", err)
			}
		}

		links := []interface{}{
			&assignmentDatamodel.UserProject{UserID: ids["manager"], ProjectID: p.ID},
			&assignmentDatamodel.UserProject{UserID: ids["staff"], ProjectID: p.ID},
			&assignmentDatamodel.UserTask{UserID: ids["staff"], TaskID: tasks[1].ID},
		}
		for _, l := range links {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error; err != nil {
				return fmt.Errorf("insert assignment: %w", err)
			}
		}

		fmt.Println("Seeded project:", p.Name)
		return nil
	})
}
