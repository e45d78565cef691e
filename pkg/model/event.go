package model

const (
	ActionCreate = "Create"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
)

// UsageChange is the payload pushed to subscribers of an asset after a
// committed mutation. Delete events carry an id-only Data.
type UsageChange struct {
	Action string       `json:"action"`
	Data   *UsageDetail `json:"data,omitempty"`
}
