package auth

// ClaimSet is the set of permission strings granted by a verified bearer
// credential.
type ClaimSet map[string]bool

func NewClaimSet(permissions ...string) ClaimSet {
	set := make(ClaimSet, len(permissions))
	for _, p := range permissions {
		set[p] = true
	}
	return set
}

func (c ClaimSet) Has(permission string) bool {
	return c[permission]
}

// Claims is the decoded content of a verified bearer token.
type Claims struct {
	Subject     string
	Permissions ClaimSet
}
