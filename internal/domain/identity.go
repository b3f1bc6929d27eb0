package domain

// Label names the identity domain that issued a token. It travels in the
// token header and is only trusted after that domain verified the signature.
type Label string

const (
	LabelAdmin  Label = "admin"
	LabelClient Label = "client"
)

// ParseLabel maps a raw header value onto a known label.
func ParseLabel(raw string) (Label, bool) {
	switch Label(raw) {
	case LabelAdmin:
		return LabelAdmin, true
	case LabelClient:
		return LabelClient, true
	default:
		return "", false
	}
}

// MinSecretLength is the shortest HS256 signing secret a domain accepts.
const MinSecretLength = 32

func (l Label) String() string {
	return string(l)
}
