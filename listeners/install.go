package listeners

import "github.com/jrsteele09/resume-matcher-client/events"

// Subscription ids. The bus ignores a repeated id, which keeps Install idempotent.
const (
	NavigationLoginID  = "listeners.navigation.login"
	NavigationLogoutID = "listeners.navigation.logout"
	LogoutRedirectID   = "listeners.logout-redirect"
)

// Install subscribes the given listeners to bus. Nil listeners are skipped.
// Calling it again with the same bus does not add duplicates.
func Install(bus *events.Bus, nav *Navigation, redirect *LogoutRedirect) {
	if nav != nil {
		bus.Subscribe(NavigationLoginID, events.Login, nav.handle)
		bus.Subscribe(NavigationLogoutID, events.Logout, nav.handle)
	}
	if redirect != nil {
		bus.Subscribe(LogoutRedirectID, events.Logout, redirect.handle)
	}
}
