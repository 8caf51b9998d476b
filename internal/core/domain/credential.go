package domain

import "time"

// Credential is an exchange-issued session credential. It is immutable:
// renewal produces a new Credential, it never mutates an existing one.
// The SessionManager owns the cached instance; everyone else reads only.
type Credential struct {
	EncryptedSecret string    `json:"-"` // Exchange-encrypted password, opaque
	ObtainedAt      time.Time `json:"obtained_at"`
	ValidUntil      time.Time `json:"valid_until"`
	SourcePasskey   string    `json:"-"` // Passkey used to obtain it, kept for silent renewal
}

// Valid reports whether the credential is still usable at the given instant.
func (c *Credential) Valid(now time.Time) bool {
	return c.EncryptedSecret != "" && now.Before(c.ValidUntil)
}
