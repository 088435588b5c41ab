package entity

// Role is the account role. A buyer may become a seller; admin is seeded only.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// User is an account in the users table.
// PasswordHash holds a bcrypt hash. The card fields are stored in the
// clear; this mirrors the demo backend and is not a production pattern.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
	IsVerified   bool   `json:"is_verified"`
	Role         Role   `json:"role"`
	Address      string `json:"address,omitempty"`
	CardNumber   string `json:"card_number,omitempty"`
	CardExpiry   string `json:"card_expiry,omitempty"`
	CardCvv      string `json:"card_cvv,omitempty"`
}

// ProfileComplete reports whether the user can pass the checkout guard:
// an address and a payment method must be on file.
func (u *User) ProfileComplete() bool {
	return u != nil && u.Address != "" && u.CardNumber != ""
}

// Sanitized returns a copy safe to hand to the UI or the agent.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.CardCvv = ""
	return u
}
