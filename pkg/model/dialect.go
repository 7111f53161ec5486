package model

// DefaultDialect is used whenever a request carries an unknown dialect.
const DefaultDialect = "Zürich"

// Dialects is the fixed set of Swiss German dialects the pronunciation
// service supports. Order matters for UI display.
var Dialects = []string{
	"Aarau",
	"Bern",
	"Basel",
	"Graubünden",
	"Luzern",
	"St. Gallen",
	"Valais",
	"Zürich",
}

// IsDialect reports whether d is one of the supported dialects.
// Matching is exact; no trimming or case folding.
func IsDialect(d string) bool {
	for _, known := range Dialects {
		if d == known {
			return true
		}
	}
	return false
}

// NormalizeDialect returns d unchanged when it is a supported dialect
// and DefaultDialect otherwise. Every collaborator-facing call site
// normalizes before passing a dialect on.
func NormalizeDialect(d string) string {
	if IsDialect(d) {
		return d
	}
	return DefaultDialect
}
