package session

import "testing"

func TestScopeKey(t *testing.T) {
	tests := []struct {
		name   string
		user   *User
		want   string
		wantOk bool
	}{
		{name: "LoggedOut", user: nil, wantOk: false},
		{name: "NoOrganization", user: &User{ID: "7"}, wantOk: false},
		{name: "Resolved", user: &User{ID: "7", OrganizationID: "42"}, want: "7-organization-42", wantOk: true},
		{name: "EmptyUserID", user: &User{OrganizationID: "42"}, want: "-organization-42", wantOk: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if tt.user != nil {
				s.Login(*tt.user)
			}
			got, ok := s.ScopeKey()
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("ScopeKey() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestSessionNotifies(t *testing.T) {
	s := New()

	calls := 0
	s.Subscribe(func() { calls++ })

	s.SwitchOrganization("1") // nobody logged in
	s.Login(User{ID: "1", OrganizationID: "a"})
	s.SwitchOrganization("b")
	s.SwitchOrganization("b")
	s.Logout()

	if calls != 3 {
		t.Errorf("Expected 3 notifications, got %d", calls)
	}
}

func TestUserReturnsCopy(t *testing.T) {
	s := New()
	s.Login(User{ID: "1", OrganizationID: "a"})

	u := s.User()
	u.OrganizationID = "changed"

	if key, _ := s.ScopeKey(); key != "1-organization-a" {
		t.Errorf("Session modified through returned user: %s", key)
	}
}

func TestResolvers(t *testing.T) {
	if key, ok := Static("k")(); !ok || key != "k" {
		t.Errorf("Static resolver returned %q, %v", key, ok)
	}
	if _, ok := None(); ok {
		t.Errorf("None resolver resolved a scope")
	}
}
