package domain

// Identity is the authenticated caller passed explicitly into every service
// operation. Services never read actor information from ambient state.
type Identity struct {
	UserID int64
	Role   Role
}

// Valid reports whether the identity carries a usable actor.
func (i Identity) Valid() bool {
	return i.UserID > 0 && i.Role.Valid()
}
