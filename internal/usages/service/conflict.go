package service

import (
	"time"

	"assetbook/pkg/model"
)

// conflicts reports whether a candidate window collides with an existing
// span. The boundary rule is inclusive on both ends: a candidate endpoint
// landing exactly on an existing boundary is a conflict, so back-to-back
// windows on one asset are rejected. This matches the deployed policy and
// is pinned by tests; do not "fix" it to a half-open comparison.
func conflicts(existingStart, existingEnd, start, end time.Time) bool {
	startInside := !existingStart.After(start) && !existingEnd.Before(start)
	endInside := !existingStart.After(end) && !existingEnd.Before(end)
	return startInside || endInside
}

// firstConflict scans existing usages for one that collides with
// [start, end], skipping excludeID (the record being updated in place).
func firstConflict(existing []*model.Usage, start, end time.Time, excludeID string) *model.Usage {
	for _, u := range existing {
		if excludeID != "" && u.ID == excludeID {
			continue
		}
		if conflicts(u.StartTime, u.EndTime, start, end) {
			return u
		}
	}
	return nil
}
