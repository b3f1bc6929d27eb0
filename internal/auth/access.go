package auth

import "github.com/spec-kit/coworking/internal/domain"

// AccessLevel is the per-route requirement on the resolved identity.
type AccessLevel int

const (
	AccessAny AccessLevel = iota
	AccessClientOnly
	AccessAdminOnly
)

// Permits reports whether an identity of the given kind may use the route.
func (a AccessLevel) Permits(kind domain.Label) bool {
	switch a {
	case AccessAny:
		return true
	case AccessClientOnly:
		return kind == domain.LabelClient
	case AccessAdminOnly:
		return kind == domain.LabelAdmin
	default:
		return false
	}
}

func (a AccessLevel) String() string {
	switch a {
	case AccessAny:
		return "any"
	case AccessClientOnly:
		return "client_only"
	case AccessAdminOnly:
		return "admin_only"
	default:
		return "unknown"
	}
}
