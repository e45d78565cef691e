package http

import (
	"net/http"
	"strconv"
	"time"

	"assetbook/pkg/config"
	apperrors "assetbook/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractTimeRange reads the optional start_time and end_time query
// parameters. Window boundaries travel as RFC3339 everywhere in this API,
// so anything else is rejected rather than guessed at.
func ExtractTimeRange(r *http.Request) (*time.Time, *time.Time, error) {
	query := r.URL.Query()

	var start, end *time.Time
	if s := query.Get("start_time"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid start_time format, must be RFC3339")
		}
		start = &parsed
	}
	if s := query.Get("end_time"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid end_time format, must be RFC3339")
		}
		end = &parsed
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, apperrors.InvalidInput("end_time must not be before start_time")
	}

	return start, end, nil
}
