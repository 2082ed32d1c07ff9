package authz

// Permission is a named capability gating access to a route or action.
// The set is closed: the gateway never mints permission names at runtime,
// it only carries the ones the identity service embeds in the credential.
type Permission string

const (
	PermViewDashboard       Permission = "VIEW_DASHBOARD"
	PermViewSales           Permission = "VIEW_SALES"
	PermManageProducts      Permission = "MANAGE_PRODUCTS"
	PermManageOrders        Permission = "MANAGE_ORDERS"
	PermViewClients         Permission = "VIEW_CLIENTS"
	PermManageInventory     Permission = "MANAGE_INVENTORY"
	PermManageCouriers      Permission = "MANAGE_COURIERS"
	PermManageUsers         Permission = "MANAGE_USERS"
	PermManageSubscriptions Permission = "MANAGE_SUBSCRIPTIONS"
)

var knownPermissions = map[Permission]struct{}{
	PermViewDashboard:       {},
	PermViewSales:           {},
	PermManageProducts:      {},
	PermManageOrders:        {},
	PermViewClients:         {},
	PermManageInventory:     {},
	PermManageCouriers:      {},
	PermManageUsers:         {},
	PermManageSubscriptions: {},
}

// Known reports whether p is part of the closed permission set.
func Known(p Permission) bool {
	_, ok := knownPermissions[p]
	return ok
}

// Normalize drops unrecognized names from a permission list coming off the
// wire, preserving order. Unknown names are not an error: an older gateway
// must tolerate credentials minted with newer permissions.
func Normalize(raw []string) []Permission {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Permission, 0, len(raw))
	for _, v := range raw {
		p := Permission(v)
		if Known(p) {
			out = append(out, p)
		}
	}
	return out
}

// HasAny reports whether the user permission set intersects the required
// set. An empty required set never grants here; callers treat "no required
// permissions" as unconditional access before consulting HasAny.
func HasAny(userPerms []Permission, required []Permission) bool {
	if len(required) == 0 || len(userPerms) == 0 {
		return false
	}
	have := make(map[Permission]struct{}, len(userPerms))
	for _, p := range userPerms {
		have[p] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; ok {
			return true
		}
	}
	return false
}
