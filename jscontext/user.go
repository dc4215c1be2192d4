package jscontext

import "slices"

// User is the serialized request user.
type User struct {
	Username        string   `json:"username"`
	IsAuthenticated bool     `json:"is_authenticated"`
	IsStaff         bool     `json:"is_staff"`
	IsSuperuser     bool     `json:"is_superuser"`
	Permissions     []string `json:"permissions"`
}

// AnonymousUser returns an unauthenticated user without permissions.
func AnonymousUser() *User {
	return &User{Permissions: []string{}}
}

// HasPerm reports whether perm (e.g. "app.change_item") is in the user's
// permission list.
func (u *User) HasPerm(perm string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Permissions, perm)
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Permissions = slices.Clone(u.Permissions)
	return &c
}
