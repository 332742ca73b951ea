package access

import (
	"iter"

	"github.com/bookms/bookms-admin/internal/domain/auth"
)

// NavEntry is one item of the side navigation.
type NavEntry struct {
	Label    string      `json:"label"`
	Path     string      `json:"path"`
	Icon     string      `json:"icon"`
	Section  string      `json:"section"`
	Required []auth.Role `json:"required,omitempty"`
}

// NavSection groups entries under a heading.
type NavSection struct {
	Title   string
	Entries []NavEntry
}

const (
	SectionLibrary    = "Library"
	SectionManagement = "Management"
)

var navEntries = []NavEntry{
	{Label: "Books", Path: BooksPath, Icon: "book", Section: SectionLibrary},
	{Label: "Categories", Path: CategoriesPath, Icon: "tag", Section: SectionLibrary},
	{Label: "Authors", Path: AuthorsPath, Icon: "feather", Section: SectionLibrary},
	{
		Label: "Users", Path: UsersPath, Icon: "users", Section: SectionManagement,
		Required: []auth.Role{auth.RoleAdmin, auth.RoleSuperAdmin},
	},
	{
		Label: "Roles", Path: RolesPath, Icon: "shield", Section: SectionManagement,
		Required: []auth.Role{auth.RoleSuperAdmin},
	},
}

// NavEntries returns the declared navigation in display order.
func NavEntries() []NavEntry {
	out := make([]NavEntry, len(navEntries))
	copy(out, navEntries)
	return out
}

// VisibleEntries yields the entries the session may see, preserving declaration order.
// Entries without a requirement are always visible; others need HasAnyRole.
// The sequence can be ranged over any number of times.
func VisibleEntries(s auth.Session, entries []NavEntry) iter.Seq[NavEntry] {
	return func(yield func(NavEntry) bool) {
		for _, e := range entries {
			if e.Required != nil && !s.HasAnyRole(e.Required...) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// VisibleSections groups the visible entries by section in first-seen order.
// Sections left without entries are dropped.
func VisibleSections(s auth.Session, entries []NavEntry) []NavSection {
	var sections []NavSection
	index := map[string]int{}
	for e := range VisibleEntries(s, entries) {
		i, ok := index[e.Section]
		if !ok {
			i = len(sections)
			index[e.Section] = i
			sections = append(sections, NavSection{Title: e.Section})
		}
		sections[i].Entries = append(sections[i].Entries, e)
	}
	return sections
}
