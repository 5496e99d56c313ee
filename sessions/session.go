package sessions

import "time"

// Session is one authenticated user-agent's delegated access to the
// upstream platform. Token material is mutated only by the Manager.
type Session struct {
	ID string

	// Upstream token material
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	InstanceURL  string

	// Opaque user identity reference
	IdentityURL string
	UserID      string
	UserName    string

	Industry string

	// NeedsReauth is set when a refresh has failed or an upstream
	// authorization failure was observed; the next EnsureValid attempts
	// a refresh before asking the user to sign in again.
	NeedsReauth bool

	CreatedAt  time.Time
	LastSeenAt time.Time
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
