package session

import (
	"fmt"

	"github.com/ValentinKolb/metasync/lib/observable"
)

// User identifies the logged-in user and the organization they currently work in.
type User struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
}

// ScopeResolver returns the current scope key. The boolean is false when no scope
// can be resolved (nobody logged in, no organization selected).
type ScopeResolver func() (key string, ok bool)

// ScopeKey builds the key under which the state of a user in an organization is stored.
func ScopeKey(userID, orgID string) string {
	return fmt.Sprintf("%s-organization-%s", userID, orgID)
}

// Static returns a resolver that always resolves to key.
func Static(key string) ScopeResolver {
	return func() (string, bool) { return key, true }
}

// None is a resolver that never resolves a scope.
func None() (string, bool) { return "", false }

// Session tracks the current user. It implements observable.Observable and
// notifies subscribers on login, logout and organization switches.
type Session struct {
	user *observable.Value[*User]
}

// New creates a session without a logged-in user.
func New() *Session {
	return &Session{user: observable.NewValue[*User](nil)}
}

// Login sets the current user.
func (s *Session) Login(u User) {
	s.user.Set(&u)
}

// Logout clears the current user.
func (s *Session) Logout() {
	s.user.Set(nil)
}

// SwitchOrganization changes the organization of the current user.
// It is a no-op when nobody is logged in.
func (s *Session) SwitchOrganization(orgID string) {
	s.user.Update(func(u *User) *User {
		if u == nil {
			return nil
		}
		next := *u
		next.OrganizationID = orgID
		return &next
	})
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *User {
	u := s.user.Get()
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Subscribe implements observable.Observable.
func (s *Session) Subscribe(fn func()) (dispose func()) {
	return s.user.Subscribe(fn)
}

// ScopeKey resolves the scope key of the current user. Only the organization gates
// resolution: a user without an organization has no scope.
func (s *Session) ScopeKey() (string, bool) {
	u := s.user.Get()
	if u == nil || u.OrganizationID == "" {
		return "", false
	}
	return ScopeKey(u.ID, u.OrganizationID), true
}
