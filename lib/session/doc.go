// Package session models the login session that decides under which scope key a
// user's state is stored.
//
// The scope key has the form "<userID>-organization-<orgID>". Switching the user or
// the organization changes the key, which makes bound values reload their state.
package session
