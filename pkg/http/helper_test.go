package http

import (
	"net/http/httptest"
	"testing"

	apperrors "assetbook/pkg/errors"
)

func TestExtractLimitOffsetNormalizes(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/usages?limit=0&offset=-3", nil)

	limit, offset, err := ExtractLimitOffset(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 10 {
		t.Errorf("expected fallback limit 10, got %d", limit)
	}
	if offset != 0 {
		t.Errorf("expected negative offset clamped to 0, got %d", offset)
	}
}

func TestExtractTimeRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/?start_time=2026-03-01T10:00:00Z&end_time=2026-03-01T11:00:00Z", nil)

	start, end, err := ExtractTimeRange(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start == nil || end == nil {
		t.Fatal("expected both boundaries parsed")
	}
	if !end.After(*start) {
		t.Errorf("expected end after start, got %v / %v", start, end)
	}
}

func TestExtractTimeRangeRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"non-RFC3339 start": "/?start_time=2026-03-01",
		"reversed range":    "/?start_time=2026-03-01T11:00:00Z&end_time=2026-03-01T10:00:00Z",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest("GET", target, nil)

			_, _, err := ExtractTimeRange(r)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}
