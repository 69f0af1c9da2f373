// Package observable provides a minimal reactive layer: observable values with
// change callbacks, and Watch for reacting to changes of a derived value.
//
// Example:
//
//	user := observable.NewValue("alice")
//	stop := observable.Watch(user, user.Get, func(name string) {
//		fmt.Println("user is now", name)
//	})
//	defer stop()
//	user.Set("bob") // prints "user is now bob"
package observable
