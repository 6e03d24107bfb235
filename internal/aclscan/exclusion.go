package aclscan

import "strings"

// BareName liefert den nackten Kontonamen ohne Domänen-Präfix: alles nach
// dem letzten Backslash, bzw. die ganze Zeichenkette ohne Backslash.
func BareName(identity string) string {
	if i := strings.LastIndexByte(identity, '\\'); i >= 0 {
		return identity[i+1:]
	}
	return identity
}

// ExclusionSet ist die Menge der Kontonamen, die aus Berichten herausgefiltert
// werden. Verglichen wird der nackte Name exakt und ohne Beachtung von
// Groß-/Kleinschreibung -- kein Teilstring-Vergleich, damit "Users" nicht
// auch "Power Users" trifft. Nach dem Start unveränderlich.
type ExclusionSet struct {
	names map[string]struct{}
}

// NewExclusionSet baut die Menge aus nackten Namen; leere Einträge werden
// ignoriert.
func NewExclusionSet(names ...string) ExclusionSet {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		m[strings.ToLower(n)] = struct{}{}
	}
	return ExclusionSet{names: m}
}

// Contains prüft, ob der nackte Name der Identität ausgeschlossen ist.
func (s ExclusionSet) Contains(identity string) bool {
	if len(s.names) == 0 {
		return false
	}
	_, ok := s.names[strings.ToLower(BareName(identity))]
	return ok
}

// Len liefert die Anzahl der Ausschlüsse.
func (s ExclusionSet) Len() int {
	return len(s.names)
}

// protectedNames werden im Remove-Modus niemals entfernt; der Vergleich ist
// bewusst ein Teilstring-Match auf die volle Identität, damit sowohl
// "NT AUTHORITY\SYSTEM" als auch "BUILTIN\Administrators" gehalten werden.
var protectedNames = []string{"system", "administrators", "network service"}

// KeepSet entscheidet im Remove-Modus, welche Regeln überleben: geschützte
// Systemkonten plus die vom Aufrufer benannten Identitäten (voller Name,
// exakter Vergleich ohne Groß-/Kleinschreibung).
type KeepSet struct {
	exact map[string]struct{}
}

func NewKeepSet(identities ...string) KeepSet {
	m := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		m[strings.ToLower(id)] = struct{}{}
	}
	return KeepSet{exact: m}
}

// Keep meldet true, wenn die Regel dieser Identität erhalten bleiben muss.
func (k KeepSet) Keep(identity string) bool {
	lower := strings.ToLower(identity)
	for _, p := range protectedNames {
		if strings.Contains(lower, p) {
			return true
		}
	}
	_, ok := k.exact[lower]
	return ok
}
