// Package metasync persists small pieces of per-user UI state with as few store
// writes as possible.
//
// Two parts work together:
//
//   - Writer collects staged field updates per scope key and writes them in
//     throttled flush passes. Each pass reads the stored record of a scope, merges
//     the staged fields over it and writes it back, so fields owned by other
//     bindings are preserved. Passes never overlap: a flush requested while a pass
//     is running is queued and runs right after it.
//
//   - AutoSave binds an observable host value to one field of the record of the
//     current scope. It loads the stored value (or a default), stages every later
//     change and reloads whenever the scope changes, for example when the user
//     switches organization.
//
// Store errors never reach the code staging values. They are logged through the
// dragonboat logger named "metasync" and counted in the writer metrics.
//
// Example:
//
//	w := metasync.NewWriter(metastore.NewMemoryMetaStore())
//	defer w.Close(context.Background())
//
//	sess := session.New()
//	sess.Login(session.User{ID: "7", OrganizationID: "42"})
//
//	theme := observable.NewValue("light")
//	b := metasync.AutoSave(w, sess.ScopeKey, sess, theme, "theme", "light")
//	defer b.Close()
//
//	theme.Set("dark") // written to "7-organization-42" within the flush interval
package metasync
