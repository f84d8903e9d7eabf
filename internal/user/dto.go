package user

import (
	"strings"

	errors "github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/auth"
	"github.com/frahmantamala/wbs-tracker/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

func (d *CreateUserDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)
	if d.Role == "" {
		d.Role = auth.RoleStaff
	}
}

func (d CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("username", d.Username).Required().MaxLength(64)
	v.Field("email", d.Email).MaxLength(255).Custom(func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		if s != "" && !strings.Contains(s, "@") {
			return errors.NewValidationFieldError("email", "email must be a valid address", errors.ErrCodeValidationFailed)
		}
		return nil
	})
	v.Field("password", d.Password).Required().Custom(func(value interface{}) *errors.AppError {
		// bcrypt ignores everything past 72 bytes
		if s, _ := value.(string); len(s) > 72 {
			return errors.NewValidationFieldError("password", "password must not exceed 72 bytes", errors.ErrCodeValidationFailed)
		}
		return nil
	})
	v.Field("role", d.Role).OneOf(errors.ErrCodeInvalidRole, auth.Roles...)
	return v.Validate()
}

func (d UpdateRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("role", d.Role).Required().OneOf(errors.ErrCodeInvalidRole, auth.Roles...)
	return v.Validate()
}
