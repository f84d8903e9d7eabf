package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/user"
)

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	TasksAssign   []string  `json:"tasks_assign"`
	ProjectAssign []string  `json:"project_assign"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Memberships are a user's assignment lists as read from the join tables.
type Memberships struct {
	Tasks    []string
	Projects []string
}

type UsersResponse struct {
	Users []*User `json:"users"`
}

type MeResponse struct {
	User         *User    `json:"user"`
	Capabilities []string `json:"capabilities"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		PasswordHash:  u.PasswordHash,
		CreatedAt:     u.CreatedAt,
		TasksAssign:   []string{},
		ProjectAssign: []string{},
	}
}

func FromDataModelWithMemberships(u *userDatamodel.User, m Memberships) *User {
	domainUser := FromDataModel(u)
	if m.Tasks != nil {
		domainUser.TasksAssign = m.Tasks
	}
	if m.Projects != nil {
		domainUser.ProjectAssign = m.Projects
	}
	return domainUser
}
