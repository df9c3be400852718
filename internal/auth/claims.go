package auth

// UserClaims is the identity attached to every authenticated request,
// regardless of whether it arrived via session cookie or API key.
type UserClaims interface {
	UserID() string
	Email() string
	Source() string
	HasPermission(action string) bool
}

// SessionClaims carries identity resolved from a Redis-backed session
type SessionClaims struct {
	UserUUID  string
	UserEmail string
	SessionID string
}

func (c *SessionClaims) UserID() string            { return c.UserUUID }
func (c *SessionClaims) Email() string             { return c.UserEmail }
func (c *SessionClaims) Source() string            { return "SESSION" }
func (c *SessionClaims) HasPermission(string) bool { return true }

// APIKeyClaims carries identity resolved from an X-Api-Key header
type APIKeyClaims struct {
	UserUUID  string
	UserEmail string
	KeyID     string
}

func (c *APIKeyClaims) UserID() string            { return c.UserUUID }
func (c *APIKeyClaims) Email() string             { return c.UserEmail }
func (c *APIKeyClaims) Source() string            { return "API_KEY" }
func (c *APIKeyClaims) HasPermission(string) bool { return true }
