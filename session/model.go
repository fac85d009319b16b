package session

// User is the authenticated account profile returned by the backend.
//
// User instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session defines a public type used by goDrive APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	AccessToken     string `json:"accessToken"`
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`

	// Transient fields, never persisted.
	IsLoading bool   `json:"-"`
	Err       string `json:"-"`
}

// Empty reports whether s carries no authenticated state.
func (s *Session) Empty() bool {
	return s == nil || (s.AccessToken == "" && s.User == nil && !s.IsAuthenticated)
}

// Normalize restores the session invariant: IsAuthenticated must equal
// "an access token is present". Persisted blobs are normalized on load so a
// hand-edited or truncated record cannot produce an authenticated session
// without a token.
func (s *Session) Normalize() {
	if s == nil {
		return
	}
	s.IsAuthenticated = s.AccessToken != ""
	if !s.IsAuthenticated {
		s.User = nil
	}
}

// Clone returns a deep copy of s. The zero session is returned for nil.
func (s *Session) Clone() Session {
	if s == nil {
		return Session{}
	}
	out := *s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
