package console

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/helios-energy/helios-admin/internal/shared"
)

// MenuEntry is one navigable item. Permissions follows the same at-least-one
// rule as the gate; empty means visible to any authenticated principal.
type MenuEntry struct {
	Label       string
	Route       string
	Permissions []string
}

// MenuSection groups entries under a heading. A section with no visible
// entries is dropped entirely.
type MenuSection struct {
	Label   string
	Entries []MenuEntry
}

// DefaultMenu is the navigation tree of the admin console, permissions drawn
// from the page table so the guard and the menu agree.
func DefaultMenu() []MenuSection {
	entry := func(label, route string) MenuEntry {
		return MenuEntry{Label: label, Route: route, Permissions: pagePermissions[route]}
	}
	return []MenuSection{
		{Label: "Overview", Entries: []MenuEntry{
			entry("Dashboard", "/dashboard"),
		}},
		{Label: "Administration", Entries: []MenuEntry{
			entry("Users", "/users"),
			entry("Roles", "/roles"),
		}},
		{Label: "Clients", Entries: []MenuEntry{
			entry("Client Directory", "/clients"),
		}},
		{Label: "Inventory", Entries: []MenuEntry{
			entry("Warehouses", "/inventory/warehouses"),
			entry("Tools", "/inventory/tools"),
			entry("Materials", "/inventory/materials"),
		}},
		{Label: "Finance", Entries: []MenuEntry{
			entry("Quotations", "/quotations"),
		}},
		{Label: "Support", Entries: []MenuEntry{
			entry("Tickets", "/tickets"),
		}},
		{Label: "Platform", Entries: []MenuEntry{
			entry("Audit Log", "/audit"),
		}},
	}
}

// FilterMenu returns the sections visible to the principal. An entry stays
// when its permission set is empty or intersects the principal's; a section
// stays only when at least one of its entries does. Entries within a section
// are ordered by label.
func FilterMenu(principal *shared.Principal, sections []MenuSection) []MenuSection {
	if principal == nil {
		return nil
	}
	collator := collate.New(language.English, collate.IgnoreCase)

	out := make([]MenuSection, 0, len(sections))
	for _, section := range sections {
		visible := make([]MenuEntry, 0, len(section.Entries))
		for _, entry := range section.Entries {
			if Evaluate(principal, Requirement{Permissions: entry.Permissions}) == StatusGranted {
				visible = append(visible, entry)
			}
		}
		if len(visible) == 0 {
			continue
		}
		sort.SliceStable(visible, func(i, j int) bool {
			return collator.CompareString(visible[i].Label, visible[j].Label) < 0
		})
		out = append(out, MenuSection{Label: section.Label, Entries: visible})
	}
	return out
}
