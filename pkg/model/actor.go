package model

const (
	RoleUser    = "user"
	RoleManager = "manager"
)

// Actor is the identity acting on a request: subject id plus role set.
// It is rebuilt from the access token on every request and never persisted.
type Actor struct {
	SubjectID string
	Roles     []string
}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsManager reports whether the actor holds the elevated role that bypasses
// ownership checks.
func (a Actor) IsManager() bool {
	return a.HasRole(RoleManager)
}
