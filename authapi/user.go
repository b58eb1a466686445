package authapi

// User is the profile object the backend returns alongside tokens. The
// client treats it as an opaque cache, so it stays a generic map; the
// accessors read the handful of fields the listeners display.
type User map[string]any

// Email returns the "email" field or "".
func (u User) Email() string {
	return u.stringField("email")
}

// FirstName returns the "first_name" field or "".
func (u User) FirstName() string {
	return u.stringField("first_name")
}

// Username returns the "username" field or "".
func (u User) Username() string {
	return u.stringField("username")
}

// DisplayName picks first name, then username, then "User".
func (u User) DisplayName() string {
	if name := u.FirstName(); name != "" {
		return name
	}
	if name := u.Username(); name != "" {
		return name
	}
	return "User"
}

func (u User) stringField(key string) string {
	if u == nil {
		return ""
	}
	s, _ := u[key].(string)
	return s
}
