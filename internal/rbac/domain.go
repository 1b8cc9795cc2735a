package rbac

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Module is a functional area of the console used as the unit of granting.
type Module string

// Known modules.
const (
	ModuleJobs         Module = "JOBS"
	ModuleCandidates   Module = "CANDIDATES"
	ModuleCVParsing    Module = "CV_PARSING"
	ModuleAssessments  Module = "ASSESSMENTS"
	ModuleBenchmark    Module = "BENCHMARK"
	ModuleIntelligence Module = "INTELLIGENCE"
	ModuleTeam         Module = "TEAM"
	ModuleRoles        Module = "ROLES"
	ModuleBranches     Module = "BRANCHES"
	ModuleSettings     Module = "SETTINGS"
	ModuleGuide        Module = "GUIDE"
)

// Action is an operation that can be granted on a module.
type Action string

// Known actions.
const (
	ActionView    Action = "VIEW"
	ActionCreate  Action = "CREATE"
	ActionEdit    Action = "EDIT"
	ActionDelete  Action = "DELETE"
	ActionExecute Action = "EXECUTE"
	ActionExport  Action = "EXPORT"
)

var (
	// ErrUnknownModule is returned when a module identifier is not in the catalogue.
	ErrUnknownModule = errors.New("rbac: unknown module")
	// ErrUnknownAction is returned when an action identifier is not recognised.
	ErrUnknownAction = errors.New("rbac: unknown action")
)

var actionOrder = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionExecute, ActionExport}

// ModuleInfo describes a module and the actions that make sense for it.
type ModuleInfo struct {
	ID      Module   `json:"id"`
	Name    string   `json:"name"`
	Actions []Action `json:"actions"`
}

var catalogue = []ModuleInfo{
	{ID: ModuleJobs, Name: "Jobs Management", Actions: []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ID: ModuleCandidates, Name: "Talent Network", Actions: []Action{ActionView, ActionEdit, ActionDelete, ActionExecute, ActionExport}},
	{ID: ModuleCVParsing, Name: "CV Intelligence", Actions: []Action{ActionView, ActionExecute}},
	{ID: ModuleAssessments, Name: "Technical Exams", Actions: []Action{ActionView, ActionExecute}},
	{ID: ModuleBenchmark, Name: "Salary Oracle", Actions: []Action{ActionView, ActionExecute}},
	{ID: ModuleIntelligence, Name: "Candidate Analytics", Actions: []Action{ActionView, ActionExecute}},
	{ID: ModuleTeam, Name: "Admin Accounts & Role Assignment", Actions: []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ID: ModuleRoles, Name: "RBAC Protocols", Actions: []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ID: ModuleBranches, Name: "Branch Infrastructure", Actions: []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ID: ModuleSettings, Name: "System Protocols", Actions: []Action{ActionView, ActionEdit}},
	{ID: ModuleGuide, Name: "System Documentation", Actions: []Action{ActionView}},
}

// Catalogue returns the modules known to the console in display order.
func Catalogue() []ModuleInfo {
	out := make([]ModuleInfo, len(catalogue))
	for i, m := range catalogue {
		out[i] = ModuleInfo{ID: m.ID, Name: m.Name, Actions: slices.Clone(m.Actions)}
	}
	return out
}

// ParseModule validates a module identifier read from storage or a request.
func ParseModule(raw string) (Module, error) {
	candidate := Module(strings.ToUpper(strings.TrimSpace(raw)))
	for _, m := range catalogue {
		if m.ID == candidate {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModule, raw)
}

// ParseAction validates an action identifier.
func ParseAction(raw string) (Action, error) {
	candidate := Action(strings.ToUpper(strings.TrimSpace(raw)))
	if slices.Contains(actionOrder, candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
}

// ModulePermission pairs a module with the actions granted on it.
type ModulePermission struct {
	Module  Module   `json:"moduleId"`
	Actions []Action `json:"actions"`
}

// Allows reports exact membership of action in the entry.
func (p ModulePermission) Allows(action Action) bool {
	return slices.Contains(p.Actions, action)
}

// Role groups module permissions. System roles cannot be deleted.
type Role struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Permissions []ModulePermission `json:"permissions"`
	IsSystem    bool               `json:"isSystem"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Actor is the authenticated administrator a decision is made for.
type Actor struct {
	ID       string `json:"id"`
	RoleID   string `json:"roleId"`
	BranchID string `json:"branchId"`
}

// Permission returns the entry for module, if any.
func (r Role) Permission(module Module) (ModulePermission, bool) {
	for _, p := range r.Permissions {
		if p.Module == module {
			return p, true
		}
	}
	return ModulePermission{}, false
}

// Allows reports whether the role grants action on module.
func (r Role) Allows(module Module, action Action) bool {
	p, ok := r.Permission(module)
	return ok && p.Allows(action)
}

// Grant returns a copy of the role with action added on module.
func (r Role) Grant(module Module, action Action) Role {
	out := r.clone()
	for i, p := range out.Permissions {
		if p.Module != module {
			continue
		}
		if !p.Allows(action) {
			out.Permissions[i].Actions = append(out.Permissions[i].Actions, action)
		}
		return out
	}
	out.Permissions = append(out.Permissions, ModulePermission{Module: module, Actions: []Action{action}})
	return out
}

// Revoke returns a copy of the role without action on module. The module
// entry is dropped once its last action is revoked.
func (r Role) Revoke(module Module, action Action) Role {
	out := r.clone()
	for i, p := range out.Permissions {
		if p.Module != module {
			continue
		}
		p.Actions = slices.DeleteFunc(p.Actions, func(a Action) bool { return a == action })
		if len(p.Actions) == 0 {
			out.Permissions = slices.Delete(out.Permissions, i, i+1)
		} else {
			out.Permissions[i] = p
		}
		return out
	}
	return out
}

// Toggle grants action when absent and revokes it when present.
func (r Role) Toggle(module Module, action Action) Role {
	if r.Allows(module, action) {
		return r.Revoke(module, action)
	}
	return r.Grant(module, action)
}

func (r Role) clone() Role {
	out := r
	if r.Permissions == nil {
		return out
	}
	out.Permissions = make([]ModulePermission, len(r.Permissions))
	for i, p := range r.Permissions {
		out.Permissions[i] = ModulePermission{Module: p.Module, Actions: slices.Clone(p.Actions)}
	}
	return out
}

// NormalizePermissions merges duplicate modules, de-duplicates actions and
// drops modules left without actions. Output order follows the catalogue.
func NormalizePermissions(perms []ModulePermission) []ModulePermission {
	merged := make(map[Module][]Action, len(perms))
	for _, p := range perms {
		for _, a := range p.Actions {
			if !slices.Contains(merged[p.Module], a) {
				merged[p.Module] = append(merged[p.Module], a)
			}
		}
	}
	out := make([]ModulePermission, 0, len(merged))
	for _, info := range catalogue {
		actions := merged[info.ID]
		if len(actions) == 0 {
			continue
		}
		sorted := make([]Action, 0, len(actions))
		for _, a := range actionOrder {
			if slices.Contains(actions, a) {
				sorted = append(sorted, a)
			}
		}
		out = append(out, ModulePermission{Module: info.ID, Actions: sorted})
	}
	return out
}

// ParsePermissions validates raw module/action pairs loaded from storage or a
// request body and returns the normalised set.
func ParsePermissions(raw map[string][]string) ([]ModulePermission, error) {
	perms := make([]ModulePermission, 0, len(raw))
	for rawModule, rawActions := range raw {
		module, err := ParseModule(rawModule)
		if err != nil {
			return nil, err
		}
		entry := ModulePermission{Module: module}
		for _, ra := range rawActions {
			action, err := ParseAction(ra)
			if err != nil {
				return nil, err
			}
			entry.Actions = append(entry.Actions, action)
		}
		perms = append(perms, entry)
	}
	return NormalizePermissions(perms), nil
}

// FullAccess returns every module with every catalogued action.
func FullAccess() []ModulePermission {
	out := make([]ModulePermission, 0, len(catalogue))
	for _, m := range catalogue {
		out = append(out, ModulePermission{Module: m.ID, Actions: slices.Clone(m.Actions)})
	}
	return out
}
