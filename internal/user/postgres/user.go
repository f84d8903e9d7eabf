package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/wbs-tracker/internal"
	assignmentDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/assignment"
	userDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/wbs-tracker/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrUsernameTaken
	}
	return err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// Memberships reads both join tables for the given users in two queries.
func (r *UserRepository) Memberships(ctx context.Context, userIDs []string) (map[string]user.Memberships, error) {
	out := make(map[string]user.Memberships, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var tasks []assignmentDatamodel.UserTask
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	for _, t := range tasks {
		m := out[t.UserID]
		m.Tasks = append(m.Tasks, t.TaskID)
		out[t.UserID] = m
	}

	var projects []assignmentDatamodel.UserProject
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	for _, p := range projects {
		m := out[p.UserID]
		m.Projects = append(m.Projects, p.ProjectID)
		out[p.UserID] = m
	}

	return out, nil
}
