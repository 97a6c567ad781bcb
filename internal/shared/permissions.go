package shared

// Platform permissions. Names follow the "<area>.<action>" convention used
// across the API, the page table and the menu filter.
const (
	PermUsersRead   = "users.read"
	PermUsersCreate = "users.create"
	PermUsersUpdate = "users.update"
	PermUsersDelete = "users.delete"

	PermRolesRead   = "roles.read"
	PermRolesCreate = "roles.create"
	PermRolesUpdate = "roles.update"
	PermRolesDelete = "roles.delete"

	PermClientsRead   = "clients.read"
	PermClientsCreate = "clients.create"
	PermClientsUpdate = "clients.update"
	PermClientsDelete = "clients.delete"

	PermInventoryRead   = "inventory.read"
	PermInventoryCreate = "inventory.create"
	PermInventoryUpdate = "inventory.update"
	PermInventoryDelete = "inventory.delete"

	PermFinancialRead    = "financial.read"
	PermFinancialCreate  = "financial.create"
	PermFinancialUpdate  = "financial.update"
	PermFinancialApprove = "financial.approve"

	PermSupportRead   = "support.read"
	PermSupportCreate = "support.create"
	PermSupportUpdate = "support.update"

	PermAuditRead = "audit.read"
)

// AllScopes lists every permission known to the platform, used to seed the
// permission catalog.
func AllScopes() []string {
	return []string{
		PermUsersRead, PermUsersCreate, PermUsersUpdate, PermUsersDelete,
		PermRolesRead, PermRolesCreate, PermRolesUpdate, PermRolesDelete,
		PermClientsRead, PermClientsCreate, PermClientsUpdate, PermClientsDelete,
		PermInventoryRead, PermInventoryCreate, PermInventoryUpdate, PermInventoryDelete,
		PermFinancialRead, PermFinancialCreate, PermFinancialUpdate, PermFinancialApprove,
		PermSupportRead, PermSupportCreate, PermSupportUpdate,
		PermAuditRead,
	}
}
