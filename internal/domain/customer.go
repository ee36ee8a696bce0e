package domain

// Customer is a durable contact profile. Phone number is the natural key:
// repeat guest checkouts with the same phone reuse the existing profile.
type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email"`
}

func (c Customer) DisplayName() string {
	if c.FirstName == "" && c.LastName == "" {
		return "Guest"
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
