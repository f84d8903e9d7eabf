package assignment

import "github.com/frahmantamala/wbs-tracker/internal/auditlog"

// The two membership lists a user carries.
const (
	ListTasks    = "tasks_assign"
	ListProjects = "project_assign"
)

var Lists = []string{ListTasks, ListProjects}

// Result is a user's membership list after a ledger change.
type Result struct {
	UserID string   `json:"user_id"`
	List   string   `json:"list"`
	Items  []string `json:"items"`
}

// itemType is the audit item type of the ids held in list.
func itemType(list string) string {
	if list == ListProjects {
		return auditlog.ItemProject
	}
	return auditlog.ItemTask
}
