package service

import (
	"context"
	"errors"
	"sync"
	"time"

	asseterrors "assetbook/internal/assets/errors"
	usageerrors "assetbook/internal/usages/errors"
	"assetbook/internal/usages/repository"
	"assetbook/internal/usages/validator"
	"assetbook/pkg/config"
	apperrors "assetbook/pkg/errors"
	"assetbook/pkg/model"
	"assetbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const lockIDPrefix = "usage_lock_"

const maxAnnotationLen = 500

// Notifier receives the change event for every committed mutation. Notify
// must not block and must never fail the mutation that triggered it.
type Notifier interface {
	Notify(assetID string, change model.UsageChange)
}

// AssetLookup is the slice of the asset store the engine needs: existence
// checks and summary enrichment.
type AssetLookup interface {
	FindByID(ctx context.Context, id string) (*model.Asset, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Asset, error)
}

// UserLookup resolves owner summaries for denormalized listings.
type UserLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

type UsageService interface {
	List(ctx context.Context, filter *model.UsageFilter) ([]*model.UsageDetail, int64, error)
	GetByID(ctx context.Context, id string) (*model.UsageDetail, error)
	Create(ctx context.Context, usage *model.Usage, actor model.Actor) (*model.UsageDetail, error)
	Update(ctx context.Context, id string, usage *model.Usage, actor model.Actor) error
	Delete(ctx context.Context, id string, actor model.Actor) error
}

type usageService struct {
	repo      repository.UsageRepository
	lockRepo  repository.UsageLockRepository
	assets    AssetLookup
	users     UserLookup
	validator *validator.UsageValidator
	notifier  Notifier
	cfg       *config.Config
}

func NewUsageService(
	repo repository.UsageRepository,
	lockRepo repository.UsageLockRepository,
	assets AssetLookup,
	users UserLookup,
	usageValidator *validator.UsageValidator,
	notifier Notifier,
	cfg *config.Config,
) UsageService {
	return &usageService{
		repo:      repo,
		lockRepo:  lockRepo,
		assets:    assets,
		users:     users,
		validator: usageValidator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *usageService) List(ctx context.Context, filter *model.UsageFilter) ([]*model.UsageDetail, int64, error) {
	var count int64
	var usages []*model.Usage
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count usages", "error", errCount)
			errCount = apperrors.Internal("Failed to count usages", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		usages, errFind = s.repo.Find(ctx, filter)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list usages", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve usages", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return s.buildDetails(ctx, usages), count, nil
}

func (s *usageService) GetByID(ctx context.Context, id string) (*model.UsageDetail, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Usage ID cannot be empty")
	}

	usage, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	details := s.buildDetails(ctx, []*model.Usage{usage})
	return details[0], nil
}

func (s *usageService) Create(ctx context.Context, usage *model.Usage, actor model.Actor) (*model.UsageDetail, error) {
	s.normalize(usage)

	if err := s.validate(usage); err != nil {
		return nil, err
	}

	if err := s.checkAssetExists(ctx, usage.AssetID); err != nil {
		return nil, err
	}

	// Owner is always the acting identity, never a caller-supplied value.
	usage.UserID = actor.SubjectID

	lockID, err := s.acquireAssetLock(ctx, usage.AssetID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseAssetLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release asset lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkConflict(sessCtx, usage.AssetID, usage.StartTime, usage.EndTime, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, usage); err != nil {
			return apperrors.Internal("Failed to create usage", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create usage", "asset_id", usage.AssetID, "error", err)
		return nil, err
	}

	detail := s.buildDetails(ctx, []*model.Usage{usage})[0]
	s.notifier.Notify(usage.AssetID, model.UsageChange{Action: model.ActionCreate, Data: detail})

	s.cfg.Log.Info("Usage created successfully",
		"id", usage.ID,
		"asset_id", usage.AssetID,
		"user_id", usage.UserID,
		"start_time", usage.StartTime,
	)
	return detail, nil
}

func (s *usageService) Update(ctx context.Context, id string, usage *model.Usage, actor model.Actor) error {
	if id == "" {
		return apperrors.InvalidInput("Usage ID cannot be empty")
	}
	if usage.ID != "" && usage.ID != id {
		return apperrors.Validation("Ids are different", map[string]any{
			"path_id": id,
			"body_id": usage.ID,
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if !canMutate(actor, existing) {
		return apperrors.Forbidden("No permission to modify this usage")
	}

	merged := s.mergeForUpdate(existing, usage)
	s.normalize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if merged.AssetID != existing.AssetID {
		if err := s.checkAssetExists(ctx, merged.AssetID); err != nil {
			return err
		}
	}

	lockID, err := s.acquireAssetLock(ctx, merged.AssetID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseAssetLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release asset lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkConflict(sessCtx, merged.AssetID, merged.StartTime, merged.EndTime, id); err != nil {
			return err
		}
		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			if errors.Is(err, usageerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Usage", id)
			}
			return apperrors.Internal("Failed to update usage", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update usage", "id", id, "error", err)
		return err
	}

	merged.ID = id
	detail := s.buildDetails(ctx, []*model.Usage{merged})[0]
	s.notifier.Notify(merged.AssetID, model.UsageChange{Action: model.ActionUpdate, Data: detail})

	s.cfg.Log.Info("Usage updated successfully", "id", id, "asset_id", merged.AssetID)
	return nil
}

func (s *usageService) Delete(ctx context.Context, id string, actor model.Actor) error {
	if id == "" {
		return apperrors.InvalidInput("Usage ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if !canMutate(actor, existing) {
		return apperrors.Forbidden("No permission to delete this usage")
	}

	// The event is routed by the asset the record belonged to.
	assetID := existing.AssetID

	// Deletes serialize on the same per-asset lock as creates and updates so
	// that their change events are enqueued in commit order.
	lockID, err := s.acquireAssetLock(ctx, assetID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseAssetLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release asset lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, usageerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Usage", id)
			}
			return apperrors.Internal("Failed to delete usage", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete usage", "id", id, "error", err)
		return err
	}

	s.notifier.Notify(assetID, model.UsageChange{
		Action: model.ActionDelete,
		Data:   &model.UsageDetail{Usage: model.Usage{ID: id}},
	})

	s.cfg.Log.Info("Usage deleted successfully", "id", id, "asset_id", assetID)
	return nil
}

// --- Helpers ---

func (s *usageService) normalize(u *model.Usage) {
	u.StartTime = u.StartTime.UTC()
	u.EndTime = u.EndTime.UTC()
	u.OtherInfo = sanitizer.NormalizeAnnotation(u.OtherInfo, maxAnnotationLen)
}

func (s *usageService) validate(u *model.Usage) error {
	if err := s.validator.Validate(u); err != nil {
		s.cfg.Log.Warn("Usage validation failed", "error", err)
		return apperrors.Validation("Usage validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// mergeForUpdate applies a field-level overwrite of the mutable fields onto
// the stored record; owner and creation time never change.
func (s *usageService) mergeForUpdate(existing, updates *model.Usage) *model.Usage {
	merged := *existing
	merged.AssetID = updates.AssetID
	merged.StartTime = updates.StartTime
	merged.EndTime = updates.EndTime
	merged.OtherInfo = updates.OtherInfo
	return &merged
}

func (s *usageService) mapLookupError(err error, id string) error {
	if errors.Is(err, usageerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Usage", id)
	}
	if errors.Is(err, usageerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid usage ID format")
	}
	return apperrors.Internal("Failed to retrieve usage", err)
}

func (s *usageService) checkAssetExists(ctx context.Context, assetID string) error {
	_, err := s.assets.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, asseterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Asset", assetID)
		}
		if errors.Is(err, asseterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid asset ID format")
		}
		return apperrors.Internal("Failed to check asset existence", err)
	}
	return nil
}

// checkConflict runs the boundary policy against the asset's calendar. It
// executes on the transaction's read-view so the check and the following
// write are atomic with respect to other writers.
func (s *usageService) checkConflict(ctx context.Context, assetID string, start, end time.Time, excludeID string) error {
	candidates, err := s.repo.FindCandidates(ctx, assetID, start, end)
	if err != nil {
		return apperrors.Internal("Failed to check existing usages", err)
	}

	if hit := firstConflict(candidates, start, end, excludeID); hit != nil {
		return apperrors.ConflictWithDetails(
			"During this period, the asset is used by others",
			map[string]any{
				"existing_start": hit.StartTime.Format(time.RFC3339),
				"existing_end":   hit.EndTime.Format(time.RFC3339),
			},
		)
	}
	return nil
}

func (s *usageService) acquireAssetLock(ctx context.Context, assetID string) (string, error) {
	// One lock per asset: the whole calendar is the serialization unit, so
	// two overlapping windows always contend on the same lock.
	lockID := lockIDPrefix + assetID

	lock := &model.UsageLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.UsageLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("The asset is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire asset lock", err)
	}

	return lockID, nil
}

func (s *usageService) releaseAssetLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// buildDetails attaches asset and owner summaries. Enrichment is
// best-effort: a failed lookup degrades to a bare detail instead of failing
// the operation.
func (s *usageService) buildDetails(ctx context.Context, usages []*model.Usage) []*model.UsageDetail {
	details := make([]*model.UsageDetail, len(usages))

	assetIDs := make([]string, 0, len(usages))
	userIDs := make([]string, 0, len(usages))
	seenAssets := map[string]bool{}
	seenUsers := map[string]bool{}
	for i, u := range usages {
		details[i] = &model.UsageDetail{Usage: *u}
		if u.AssetID != "" && !seenAssets[u.AssetID] {
			seenAssets[u.AssetID] = true
			assetIDs = append(assetIDs, u.AssetID)
		}
		if u.UserID != "" && !seenUsers[u.UserID] {
			seenUsers[u.UserID] = true
			userIDs = append(userIDs, u.UserID)
		}
	}

	assetByID := map[string]*model.AssetSummary{}
	if len(assetIDs) > 0 {
		if assets, err := s.assets.FindByIDs(ctx, assetIDs); err != nil {
			s.cfg.Log.Warn("Failed to resolve asset summaries", "error", err)
		} else {
			for _, a := range assets {
				assetByID[a.ID] = a.Summary()
			}
		}
	}

	userByID := map[string]*model.UserSummary{}
	if len(userIDs) > 0 {
		if users, err := s.users.FindByIDs(ctx, userIDs); err != nil {
			s.cfg.Log.Warn("Failed to resolve user summaries", "error", err)
		} else {
			for _, u := range users {
				userByID[u.ID] = u.Summary()
			}
		}
	}

	for _, d := range details {
		d.Asset = assetByID[d.AssetID]
		d.User = userByID[d.UserID]
	}
	return details
}
