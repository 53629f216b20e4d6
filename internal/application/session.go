// Package application contains the services composing the driven ports into
// the operations exposed by the driving adapters.
package application

import (
	"strconv"
	"time"
)

// DefaultSessionTTL is the inactivity window for admin sessions.
const DefaultSessionTTL = time.Hour

// SessionState is the result of validating an admin session token. Invalid
// deliberately does not distinguish a malformed token from a missing one;
// Expired is true only for a well-formed token that has aged out.
type SessionState struct {
	Valid    bool
	IssuedAt time.Time
	Expired  bool
}

// SessionCodec encodes and decodes the opaque admin session token: the issue
// instant in Unix milliseconds, verbatim. There is no MAC; the token's
// integrity rests entirely on it living in an HttpOnly/Secure/SameSite
// cookie. That is a known weakness of the given contract, not a guarantee.
//
// Sessions slide: callers re-issue the token on every successful
// authenticated response, so expiry is measured from last use.
type SessionCodec struct {
	ttl time.Duration
	now func() time.Time
}

// NewSessionCodec creates a codec with the given inactivity TTL. A zero or
// negative ttl falls back to DefaultSessionTTL.
func NewSessionCodec(ttl time.Duration) *SessionCodec {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCodec{ttl: ttl, now: time.Now}
}

// Issue produces a fresh token encoding the current instant.
func (c *SessionCodec) Issue() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10)
}

// Validate checks a client-held token. Missing or non-numeric input yields
// {Valid: false, Expired: false}; a well-formed token whose age has reached
// the TTL yields {Valid: false, Expired: true}.
func (c *SessionCodec) Validate(token string) SessionState {
	if token == "" {
		return SessionState{}
	}

	millis, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return SessionState{}
	}

	issuedAt := time.UnixMilli(millis)
	if c.now().Sub(issuedAt) >= c.ttl {
		return SessionState{Expired: true}
	}

	return SessionState{Valid: true, IssuedAt: issuedAt}
}
