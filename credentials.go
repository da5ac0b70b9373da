package atdock

import "fmt"

// Credentials identify an account for login: a handle or DID plus the
// account password.
type Credentials struct {
	Identifier string
	Password   string
}

// String renders the credentials with the password redacted so they are
// safe to log.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{identifier: %s, password: [REDACTED]}", c.Identifier)
}

// GoString matches String so %#v cannot leak the password either.
func (c Credentials) GoString() string {
	return c.String()
}
