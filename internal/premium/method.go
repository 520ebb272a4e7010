package premium

import "strings"

// Method names the formula a product uses to price cover.
type Method string

const (
	MethodHollard  Method = "HOLLARD_STANDARD"
	MethodTuraco   Method = "TURACO_STANDARD"
	MethodInternal Method = "INTERNAL_STANDARD"
)

// ParseMethod maps a stored method identifier onto a known Method. Matching is
// case-insensitive; anything unrecognised, including an empty value, selects
// MethodInternal.
func ParseMethod(s string) Method {
	switch Method(strings.ToUpper(strings.TrimSpace(s))) {
	case MethodHollard:
		return MethodHollard
	case MethodTuraco:
		return MethodTuraco
	default:
		return MethodInternal
	}
}

func (m Method) String() string {
	return string(m)
}
