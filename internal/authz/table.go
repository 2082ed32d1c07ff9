package authz

import "strings"

// Table maps route prefixes to the permissions required to enter them.
// It is immutable after construction. Lookup resolves by longest matching
// prefix, where a prefix matches either the whole path or a leading run of
// complete path segments; declaration order never influences the result.
type Table struct {
	entries []tableEntry
	public  []string
}

type tableEntry struct {
	prefix   string
	required []Permission
}

// DefaultTable is the route permission map of the storefront application.
func DefaultTable() *Table {
	return NewTable(map[string][]Permission{
		"/ventas":             {PermViewSales},
		"/productos":          {PermManageProducts},
		"/pedidos":            {PermManageOrders, PermViewSales},
		"/clientes":           {PermViewClients},
		"/inventario":         {PermManageInventory},
		"/inventario/ajustes": {PermManageInventory, PermManageProducts},
		"/mensajeros":         {PermManageCouriers},
		"/usuarios":           {PermManageUsers},
	}, DefaultPublicPrefixes())
}

// DefaultPublicPrefixes lists the unauthenticated route prefixes.
func DefaultPublicPrefixes() []string {
	return []string{"/login", "/reset-password", "/new-company", "/subscriptions", "/tracking"}
}

// NewTable builds a table from a prefix->permissions map and a public
// allow-list. Prefixes are normalized to a leading slash without a trailing
// one.
func NewTable(routes map[string][]Permission, public []string) *Table {
	t := &Table{}
	for prefix, required := range routes {
		t.entries = append(t.entries, tableEntry{
			prefix:   normalizePrefix(prefix),
			required: append([]Permission(nil), required...),
		})
	}
	for _, p := range public {
		t.public = append(t.public, normalizePrefix(p))
	}
	return t
}

// RequiredPermissions returns the permission set guarding path, or nil when
// no prefix matches (meaning any authenticated session may enter).
func (t *Table) RequiredPermissions(path string) []Permission {
	path = normalizePrefix(path)
	var best *tableEntry
	for i := range t.entries {
		e := &t.entries[i]
		if !prefixMatches(path, e.prefix) {
			continue
		}
		if best == nil || len(e.prefix) > len(best.prefix) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return append([]Permission(nil), best.required...)
}

// Public reports whether path falls under the unauthenticated allow-list.
func (t *Table) Public(path string) bool {
	path = normalizePrefix(path)
	for _, p := range t.public {
		if prefixMatches(path, p) {
			return true
		}
	}
	return false
}

// prefixMatches reports whether prefix covers path on a whole-segment
// boundary: "/productos" matches "/productos" and "/productos/nuevo" but
// not "/productos-archivados".
func prefixMatches(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

func normalizePrefix(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
