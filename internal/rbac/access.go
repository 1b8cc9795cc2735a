package rbac

import (
	"golang.org/x/text/language"

	"github.com/protocolai/hireai/internal/i18n"
)

// HasPermission reports whether actor may perform action on module given the
// current role snapshot. It fails closed: a nil actor, a role id that matches
// no role, a role without the module or a module without the exact action all
// yield false.
func HasPermission(actor *Actor, roles []Role, module Module, action Action) bool {
	if actor == nil {
		return false
	}
	role, ok := FindRole(roles, actor.RoleID)
	if !ok {
		return false
	}
	return role.Allows(module, action)
}

// FindRole looks a role up by id.
func FindRole(roles []Role, id string) (Role, bool) {
	if id == "" {
		return Role{}, false
	}
	for _, r := range roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// NavItem is a link in the console navigation.
type NavItem struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

type navEntry struct {
	path   string
	key    string
	module Module
}

var adminNav = []navEntry{
	{path: "/admin/jobs", key: "nav.jobs", module: ModuleJobs},
	{path: "/admin/talent", key: "nav.talentPool", module: ModuleCandidates},
	{path: "/admin/intelligence", key: "nav.intelligence", module: ModuleIntelligence},
}

// Navigation derives the links visible to actor. Admin links are gated on
// VIEW and ordered by their localised label; without an actor only the public
// links are returned.
func Navigation(actor *Actor, roles []Role, lang language.Tag) []NavItem {
	if actor == nil {
		return []NavItem{
			{Path: "/", Label: i18n.T(lang, "nav.portal")},
			{Path: "/admin/login", Label: i18n.T(lang, "nav.login")},
		}
	}
	items := make([]NavItem, 0, len(adminNav))
	for _, e := range adminNav {
		if HasPermission(actor, roles, e.module, ActionView) {
			items = append(items, NavItem{Path: e.path, Label: i18n.T(lang, e.key)})
		}
	}
	i18n.SortBy(lang, len(items), func(i int) string { return items[i].Label }, func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items
}
