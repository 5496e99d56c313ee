package authflow

import "time"

// Request is one pending login attempt, keyed by its anti-forgery state.
// A request is redeemable exactly once; consuming it removes it from the
// store atomically.
type Request struct {
	State         string
	CodeVerifier  string
	CodeChallenge string
	RedirectURI   string
	Industry      string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

type Repo interface {
	Put(state string, req Request) error
	Consume(state string) (Request, error)
	Close()
}
