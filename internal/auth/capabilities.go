package auth

const (
	RoleStaff   = "staff"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Roles lists the valid roles, least privileged first.
var Roles = []string{RoleStaff, RoleManager, RoleAdmin}

const (
	CapViewLogs          = "view_logs"
	CapManageUsers       = "manage_users"
	CapManageProjects    = "manage_projects"
	CapManageTasks       = "manage_tasks"
	CapAssign            = "assign"
	CapUpdateAnyProgress = "update_any_progress"
	CapUpdateProgress    = "update_progress"
	CapViewAllProjects   = "view_all_projects"
)

var roleCapabilities = map[string][]string{
	RoleAdmin: {
		CapViewLogs, CapManageUsers, CapManageProjects, CapManageTasks,
		CapAssign, CapUpdateAnyProgress, CapUpdateProgress, CapViewAllProjects,
	},
	RoleManager: {
		CapManageProjects, CapManageTasks, CapAssign,
		CapUpdateAnyProgress, CapUpdateProgress, CapViewAllProjects,
	},
	RoleStaff: {
		CapUpdateProgress,
	},
}

// RoleCapabilities is the single role to capability table every route and
// view consults.
type RoleCapabilities struct{}

func NewRoleCapabilities() RoleCapabilities {
	return RoleCapabilities{}
}

func (RoleCapabilities) Can(role, capability string) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns a copy of the role's capabilities; unknown roles get none.
func (RoleCapabilities) Capabilities(role string) []string {
	caps := roleCapabilities[role]
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}
