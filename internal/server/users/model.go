package users

// User is a registered device account. SecretHash is the bcrypt hash of
// the device secret; the plaintext is never stored.
type User struct {
	ID         string
	Login      string
	SecretHash []byte
}
