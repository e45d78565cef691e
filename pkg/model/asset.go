package model

import "time"

// Asset is a reservable physical resource. IsAvailable is informational
// only; usages are blocked purely by time conflicts.
type Asset struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	OtherInfo   string    `json:"other_info" bson:"other_info" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// AssetSummary is the slice of an asset embedded in usage details.
type AssetSummary struct {
	ID          string `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	IsAvailable bool   `json:"is_available" bson:"is_available"`
}

func (a *Asset) Summary() *AssetSummary {
	return &AssetSummary{ID: a.ID, Name: a.Name, IsAvailable: a.IsAvailable}
}
