// Package viewstate resolves what a dashboard viewer sees: the active
// domain, its stocks and the selected stock, from the rankings snapshot,
// the saved preferences and the viewer's own clicks.
package viewstate

// ResolveActiveDomain picks the domain to show. The first match wins:
//
//  1. explicit, when it names a domain in names
//  2. prefs[0], when it names a domain in names
//  3. names[0]
//
// The result is "" only when names is empty, and otherwise always an
// element of names.
func ResolveActiveDomain(explicit string, prefs []string, names []string) string {
	if explicit != "" && contains(names, explicit) {
		return explicit
	}
	if len(prefs) > 0 && contains(names, prefs[0]) {
		return prefs[0]
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
