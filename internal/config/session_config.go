package config

import "time"

type SessionConfig interface {
	GetAuthRequestExpiry() time.Duration
	GetMaxSessionAge() time.Duration
	GetSessionIdleTimeout() time.Duration
	GetRefreshSkew() time.Duration
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

// GetAuthRequestExpiry bounds how long a pending login may sit between the
// redirect to the authorization endpoint and the callback.
func (Sessions) GetAuthRequestExpiry() time.Duration {
	return 10 * time.Minute
}

func (Sessions) GetMaxSessionAge() time.Duration {
	return 8 * time.Hour
}

func (Sessions) GetSessionIdleTimeout() time.Duration {
	return 30 * time.Minute // Sessions expire after 30 minutes of inactivity
}

// GetRefreshSkew is the safety window before access token expiry within
// which a refresh is triggered.
func (Sessions) GetRefreshSkew() time.Duration {
	return 60 * time.Second
}
