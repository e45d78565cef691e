package model

import (
	"time"
)

// Usage is a time-bounded claim on one asset by one user.
type Usage struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"omitempty,mongodb"`
	AssetID   string    `json:"asset_id" bson:"asset_id" validate:"required,mongodb"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	OtherInfo string    `json:"other_info" bson:"other_info" validate:"omitempty,max=500"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// UsageDetail is a Usage denormalized with summaries of its asset and owner,
// as returned by list/get endpoints and pushed to live subscribers.
type UsageDetail struct {
	Usage `bson:",inline"`
	Asset *AssetSummary `json:"asset,omitempty" bson:"-"`
	User  *UserSummary  `json:"user,omitempty" bson:"-"`
}

// UsageFilter narrows a usage listing. StartTime/EndTime select every usage
// whose span intersects the range; AssetID and UserID are equality filters.
type UsageFilter struct {
	AssetID   string
	UserID    string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int64
}
