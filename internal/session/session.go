package session

import "time"

// Session is the server-side record behind the opaque session cookie. The
// client never sees the raw token implicitly; it fetches it from the token
// export endpoint and attaches it as a bearer credential on api calls.
//
// A session's claims (TenantID, Roles) and its stored RawToken move together:
// every claim change re-enters the codec and replaces RawToken. An already
// issued token string is never mutated in place.
type Session struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`

	TenantID string   `json:"tenantId"`
	Roles    []string `json:"roles"`

	RawToken    string    `json:"rawToken"`
	TokenExpiry time.Time `json:"tokenExpiry"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
