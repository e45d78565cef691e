package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"assetbook/internal/assets/validator"
	"assetbook/pkg/config"
	apperrors "assetbook/pkg/errors"
	"assetbook/pkg/logger"
	"assetbook/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockAssetRepository struct {
	createFunc  func(ctx context.Context, asset *model.Asset) error
	findAllFunc func(ctx context.Context, limit int, offset int64) ([]*model.Asset, error)
	countFunc   func(ctx context.Context) (int64, error)
	updateFunc  func(ctx context.Context, id string, asset *model.Asset) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockAssetRepository) Create(ctx context.Context, asset *model.Asset) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, asset)
	}
	asset.ID = "generated-id"
	return nil
}

func (m *mockAssetRepository) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	return &model.Asset{ID: id, Name: "Scanner"}, nil
}

func (m *mockAssetRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Asset, error) {
	return nil, nil
}

func (m *mockAssetRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Asset, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Asset{}, nil
}

func (m *mockAssetRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockAssetRepository) Update(ctx context.Context, id string, asset *model.Asset) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, asset)
	}
	return nil
}

func (m *mockAssetRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockAssetRepository) AssetService {
	cfg := testConfig()
	return NewAssetService(repo, validator.NewAssetValidator(cfg.Log), cfg)
}

var (
	manager = model.Actor{SubjectID: "mgr-1", Roles: []string{model.RoleUser, model.RoleManager}}
	member  = model.Actor{SubjectID: "usr-1", Roles: []string{model.RoleUser}}
)

func TestCreate_RequiresManagerRole(t *testing.T) {
	svc := newTestService(&mockAssetRepository{
		createFunc: func(ctx context.Context, asset *model.Asset) error {
			t.Error("repository should not be reached for non-managers")
			return nil
		},
	})

	_, err := svc.Create(context.Background(), &model.Asset{Name: "Projector"}, member)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCreate_ManagerSucceeds(t *testing.T) {
	svc := newTestService(&mockAssetRepository{})

	created, err := svc.Create(context.Background(), &model.Asset{Name: "  Projector  ", IsAvailable: true}, manager)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected an assigned id")
	}
	if created.Name != "Projector" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockAssetRepository{})

	_, err := svc.Create(context.Background(), &model.Asset{Name: "X"}, manager)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for a one-character name, got %v", err)
	}
}

func TestUpdate_RequiresManagerRole(t *testing.T) {
	svc := newTestService(&mockAssetRepository{})

	err := svc.Update(context.Background(), "some-id", &model.Asset{Name: "Projector"}, member)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestUpdate_IDMismatch(t *testing.T) {
	svc := newTestService(&mockAssetRepository{})

	err := svc.Update(context.Background(), "path-id", &model.Asset{ID: "body-id", Name: "Projector"}, manager)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR on id mismatch, got %v", err)
	}
}

func TestDelete_RequiresManagerRole(t *testing.T) {
	svc := newTestService(&mockAssetRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			t.Error("repository should not be reached for non-managers")
			return nil
		},
	})

	err := svc.Delete(context.Background(), "some-id", member)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestList_PropagatesRepositoryError(t *testing.T) {
	svc := newTestService(&mockAssetRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Asset, error) {
			return nil, fmt.Errorf("connection reset")
		},
	})

	_, _, err := svc.List(context.Background(), 10, 0)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInternal {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestList_ReturnsCountAndItems(t *testing.T) {
	svc := newTestService(&mockAssetRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Asset, error) {
			return []*model.Asset{{ID: "1", Name: "Scanner"}, {ID: "2", Name: "Projector"}}, nil
		},
	})

	assets, total, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Errorf("expected total 42, got %d", total)
	}
	if len(assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(assets))
	}
}
