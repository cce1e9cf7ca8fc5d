package domain

type User struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Email     string  `db:"email" json:"email"`
	Password  string  `db:"password" json:"-"`
	Role      string  `db:"role" json:"role,omitempty"`
	Stores    []Store `db:"-" json:"stores,omitempty"`
	CreatedAt string  `db:"created_at" json:"created_at,omitempty"`
}

// HasStores reports whether the user belongs to at least one store.
// A freshly registered user without one is routed to store creation.
func (u *User) HasStores() bool {
	return u != nil && len(u.Stores) > 0
}
