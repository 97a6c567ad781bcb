package console

import "github.com/helios-energy/helios-admin/internal/shared"

// pagePermissions is the single source of truth mapping routes to required
// permissions. Both the route guard and the menu filter consult it, so the
// two cannot drift apart. An absent route means "authenticated only".
var pagePermissions = map[string][]string{
	"/dashboard": nil,

	"/users": {shared.PermUsersRead},
	"/roles": {shared.PermRolesRead},

	"/clients": {shared.PermClientsRead},

	"/inventory/warehouses": {shared.PermInventoryRead},
	"/inventory/tools":      {shared.PermInventoryRead},
	"/inventory/materials":  {shared.PermInventoryRead},

	"/quotations": {shared.PermFinancialRead},

	"/tickets": {shared.PermSupportRead},

	"/audit": {shared.PermAuditRead},
}

// PagePermissions returns the permission set required for a route and
// whether the route is registered.
func PagePermissions(route string) ([]string, bool) {
	perms, ok := pagePermissions[route]
	return perms, ok
}

// RequirementFor builds the gate requirement for a route.
func RequirementFor(route string) Requirement {
	return Requirement{Permissions: pagePermissions[route]}
}
