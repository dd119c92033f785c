package domain

type Profile struct {
	Bio   string `json:"bio"`
	Email string `json:"email"`
}

// User is the stored record for one account. The username is the map key in
// the persisted snapshot and is immutable once created.
type User struct {
	PasswordHash string  `json:"password_hash"`
	Profile      Profile `json:"profile"`
}
