package service

import (
	"context"
	"errors"
	"sync"

	asseterrors "assetbook/internal/assets/errors"
	"assetbook/internal/assets/repository"
	"assetbook/internal/assets/validator"
	"assetbook/pkg/config"
	apperrors "assetbook/pkg/errors"
	"assetbook/pkg/model"
	"assetbook/pkg/sanitizer"
)

const maxOtherInfoLen = 500

type AssetService interface {
	List(ctx context.Context, limit int, offset int64) ([]*model.Asset, int64, error)
	GetByID(ctx context.Context, id string) (*model.Asset, error)
	FindByID(ctx context.Context, id string) (*model.Asset, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Asset, error)
	Create(ctx context.Context, asset *model.Asset, actor model.Actor) (*model.Asset, error)
	Update(ctx context.Context, id string, asset *model.Asset, actor model.Actor) error
	Delete(ctx context.Context, id string, actor model.Actor) error
}

type assetService struct {
	repo      repository.AssetRepository
	validator *validator.AssetValidator
	cfg       *config.Config
}

func NewAssetService(repo repository.AssetRepository, assetValidator *validator.AssetValidator, cfg *config.Config) AssetService {
	return &assetService{
		repo:      repo,
		validator: assetValidator,
		cfg:       cfg,
	}
}

func (s *assetService) List(ctx context.Context, limit int, offset int64) ([]*model.Asset, int64, error) {
	var count int64
	var assets []*model.Asset
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count assets", "error", errCount)
			errCount = apperrors.Internal("Failed to count assets", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		assets, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list assets", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve assets", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return assets, count, nil
}

func (s *assetService) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Asset ID cannot be empty")
	}

	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return asset, nil
}

// FindByID and FindByIDs expose the raw repository lookups for callers that
// want sentinel errors instead of transport-shaped ones.
func (s *assetService) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *assetService) FindByIDs(ctx context.Context, ids []string) ([]*model.Asset, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *assetService) Create(ctx context.Context, asset *model.Asset, actor model.Actor) (*model.Asset, error) {
	if !actor.IsManager() {
		return nil, apperrors.Forbidden("Only managers can create assets")
	}

	s.normalize(asset)
	if err := s.validate(asset); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		s.cfg.Log.Error("Failed to create asset", "name", asset.Name, "error", err)
		return nil, apperrors.Internal("Failed to create asset", err)
	}

	s.cfg.Log.Info("Asset created successfully", "id", asset.ID, "name", asset.Name)
	return asset, nil
}

func (s *assetService) Update(ctx context.Context, id string, asset *model.Asset, actor model.Actor) error {
	if !actor.IsManager() {
		return apperrors.Forbidden("Only managers can modify assets")
	}
	if id == "" {
		return apperrors.InvalidInput("Asset ID cannot be empty")
	}
	if asset.ID != "" && asset.ID != id {
		return apperrors.Validation("Ids are different", map[string]any{
			"path_id": id,
			"body_id": asset.ID,
		})
	}

	s.normalize(asset)
	if err := s.validate(asset); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, asset); err != nil {
		if errors.Is(err, asseterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Asset", id)
		}
		if errors.Is(err, asseterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid asset ID format")
		}
		s.cfg.Log.Error("Failed to update asset", "id", id, "error", err)
		return apperrors.Internal("Failed to update asset", err)
	}

	s.cfg.Log.Info("Asset updated successfully", "id", id)
	return nil
}

func (s *assetService) Delete(ctx context.Context, id string, actor model.Actor) error {
	if !actor.IsManager() {
		return apperrors.Forbidden("Only managers can delete assets")
	}
	if id == "" {
		return apperrors.InvalidInput("Asset ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, asseterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Asset", id)
		}
		if errors.Is(err, asseterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid asset ID format")
		}
		s.cfg.Log.Error("Failed to delete asset", "id", id, "error", err)
		return apperrors.Internal("Failed to delete asset", err)
	}

	s.cfg.Log.Info("Asset deleted successfully", "id", id)
	return nil
}

func (s *assetService) normalize(a *model.Asset) {
	a.Name = sanitizer.NormalizeName(a.Name)
	a.OtherInfo = sanitizer.NormalizeAnnotation(a.OtherInfo, maxOtherInfoLen)
}

func (s *assetService) validate(a *model.Asset) error {
	if err := s.validator.Validate(a); err != nil {
		s.cfg.Log.Warn("Asset validation failed", "error", err)
		return apperrors.Validation("Asset validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *assetService) mapLookupError(err error, id string) error {
	if errors.Is(err, asseterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Asset", id)
	}
	if errors.Is(err, asseterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid asset ID format")
	}
	return apperrors.Internal("Failed to retrieve asset", err)
}
