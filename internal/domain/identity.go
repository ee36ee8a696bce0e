package domain

// IdentityKind says how a cart owner is addressed.
type IdentityKind string

const (
	IdentitySession IdentityKind = "session"
	IdentityUser    IdentityKind = "user"
)

// Identity is the key a cart is owned by: an anonymous session token or an
// authenticated user id. A cart belongs to exactly one identity at a time.
type Identity struct {
	Kind IdentityKind
	Key  string
}

func SessionIdentity(token string) Identity {
	return Identity{Kind: IdentitySession, Key: token}
}

func UserIdentity(userID string) Identity {
	return Identity{Kind: IdentityUser, Key: userID}
}

func (i Identity) IsUser() bool {
	return i.Kind == IdentityUser
}
