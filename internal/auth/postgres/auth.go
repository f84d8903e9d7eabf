package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/auth"
	userDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) findOne(ctx context.Context, query string, arg string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetCredentialsByUsername(ctx context.Context, username string) (*auth.Credentials, error) {
	row, err := r.findOne(ctx, "username = ?", username)
	if err != nil {
		return nil, err
	}
	return &auth.Credentials{
		UserID:       row.ID,
		Username:     row.Username,
		Name:         row.Name,
		Role:         row.Role,
		PasswordHash: row.PasswordHash,
	}, nil
}

func (r *Repository) GetIdentityByID(ctx context.Context, userID string) (*internal.Identity, error) {
	row, err := r.findOne(ctx, "id = ?", userID)
	if err != nil {
		return nil, err
	}
	return &internal.Identity{
		UserID:   row.ID,
		Username: row.Username,
		Name:     row.Name,
		Role:     row.Role,
	}, nil
}
