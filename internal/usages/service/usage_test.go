package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"assetbook/internal/usages/validator"
	"assetbook/pkg/config"
	mongotx "assetbook/pkg/db/mongo"
	apperrors "assetbook/pkg/errors"
	"assetbook/pkg/logger"
	"assetbook/pkg/model"

	asseterrors "assetbook/internal/assets/errors"
	usageerrors "assetbook/internal/usages/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Valid ObjectID hex strings; the validator insists on the format.
const (
	assetA   = "64b0f0a1a2b3c4d5e6f70001"
	assetB   = "64b0f0a1a2b3c4d5e6f70002"
	ownerID  = "64b0f0a1a2b3c4d5e6f7aa01"
	otherID  = "64b0f0a1a2b3c4d5e6f7aa02"
	secondID = "64b0f0a1a2b3c4d5e6f7aa03"
)

var (
	owner    = model.Actor{SubjectID: ownerID, Roles: []string{model.RoleUser}}
	stranger = model.Actor{SubjectID: otherID, Roles: []string{model.RoleUser}}
	overseer = model.Actor{SubjectID: secondID, Roles: []string{model.RoleUser, model.RoleManager}}
)

// ────────────────────────────────────────────────
// In-memory fakes
// ────────────────────────────────────────────────

// memUsageRepository keeps usages in a map and runs "transactions" by just
// invoking the callback; atomicity in tests comes from the lock fake.
type memUsageRepository struct {
	mu     sync.Mutex
	nextID int
	byID   map[string]*model.Usage
}

func newMemUsageRepository() *memUsageRepository {
	return &memUsageRepository{byID: map[string]*model.Usage{}}
}

func (m *memUsageRepository) Create(ctx context.Context, usage *model.Usage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if usage.ID == "" {
		usage.ID = fmt.Sprintf("usage-%d", m.nextID)
	}
	stored := *usage
	m.byID[usage.ID] = &stored
	return nil
}

func (m *memUsageRepository) FindByID(ctx context.Context, id string) (*model.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", usageerrors.ErrNotFound, id)
	}
	copied := *u
	return &copied, nil
}

func (m *memUsageRepository) Find(ctx context.Context, filter *model.UsageFilter) ([]*model.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Usage
	for _, u := range m.byID {
		if filter.AssetID != "" && u.AssetID != filter.AssetID {
			continue
		}
		if filter.UserID != "" && u.UserID != filter.UserID {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memUsageRepository) Count(ctx context.Context, filter *model.UsageFilter) (int64, error) {
	usages, _ := m.Find(ctx, filter)
	return int64(len(usages)), nil
}

func (m *memUsageRepository) Update(ctx context.Context, id string, usage *model.Usage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", usageerrors.ErrNotFound, id)
	}
	stored := *usage
	stored.ID = id
	m.byID[id] = &stored
	return nil
}

func (m *memUsageRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", usageerrors.ErrNotFound, id)
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsageRepository) FindCandidates(ctx context.Context, assetID string, start, end time.Time) ([]*model.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Usage
	for _, u := range m.byID {
		if u.AssetID != assetID {
			continue
		}
		if u.StartTime.After(end) || u.EndTime.Before(start) {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memUsageRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// memLockRepository reproduces the unique-index semantics of the lock
// collection: a second Create on a held id fails with a duplicate key
// error, exactly what the service expects from Mongo.
type memLockRepository struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLockRepository() *memLockRepository {
	return &memLockRepository{held: map[string]bool{}}
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func (m *memLockRepository) Create(ctx context.Context, lock *model.UsageLock) (*model.UsageLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lock.ID] {
		return nil, duplicateKeyErr()
	}
	m.held[lock.ID] = true
	return lock, nil
}

func (m *memLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
	return nil
}

func (m *memLockRepository) EnsureIndexes(ctx context.Context) error { return nil }

type stubAssets struct {
	known map[string]bool
}

func (s *stubAssets) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	if !s.known[id] {
		return nil, fmt.Errorf("%w: %s", asseterrors.ErrNotFound, id)
	}
	return &model.Asset{ID: id, Name: "Asset " + id, IsAvailable: true}, nil
}

func (s *stubAssets) FindByIDs(ctx context.Context, ids []string) ([]*model.Asset, error) {
	var out []*model.Asset
	for _, id := range ids {
		if s.known[id] {
			out = append(out, &model.Asset{ID: id, Name: "Asset " + id, IsAvailable: true})
		}
	}
	return out, nil
}

type stubUsers struct{}

func (s *stubUsers) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		out = append(out, &model.User{ID: id, UserName: "user-" + id[len(id)-4:]})
	}
	return out, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []struct {
		assetID string
		change  model.UsageChange
	}
}

func (n *recordingNotifier) Notify(assetID string, change model.UsageChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, struct {
		assetID string
		change  model.UsageChange
	}{assetID, change})
}

func (n *recordingNotifier) all() []struct {
	assetID string
	change  model.UsageChange
} {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]struct {
		assetID string
		change  model.UsageChange
	}, len(n.events))
	copy(out, n.events)
	return out
}

// ────────────────────────────────────────────────
// Harness
// ────────────────────────────────────────────────

type engineFixture struct {
	svc      UsageService
	repo     *memUsageRepository
	locks    *memLockRepository
	notifier *recordingNotifier
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()

	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		UsageLockTTL: 10 * time.Second,
	}

	repo := newMemUsageRepository()
	locks := newMemLockRepository()
	notifier := &recordingNotifier{}

	svc := NewUsageService(
		repo,
		locks,
		&stubAssets{known: map[string]bool{assetA: true, assetB: true}},
		&stubUsers{},
		validator.NewUsageValidator(cfg.Log),
		notifier,
		cfg,
	)

	return &engineFixture{svc: svc, repo: repo, locks: locks, notifier: notifier}
}

func mustCreate(t *testing.T, f *engineFixture, actor model.Actor, assetID string, start, end time.Time) *model.UsageDetail {
	t.Helper()
	detail, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   assetID,
		StartTime: start,
		EndTime:   end,
	}, actor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return detail
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_ForcesOwnerToActor(t *testing.T) {
	f := newEngine(t)

	detail, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   assetA,
		UserID:    otherID, // caller-supplied owner must be discarded
		StartTime: ts(10, 0),
		EndTime:   ts(11, 0),
	}, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.UserID != owner.SubjectID {
		t.Errorf("expected owner %s, got %s", owner.SubjectID, detail.UserID)
	}
}

func TestCreate_UnknownAssetRejected(t *testing.T) {
	f := newEngine(t)

	unknownAsset := "64b0f0a1a2b3c4d5e6f7ffff"
	_, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   unknownAsset,
		StartTime: ts(10, 0),
		EndTime:   ts(11, 0),
	}, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreate_InvalidWindowRejected(t *testing.T) {
	f := newEngine(t)

	_, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   assetA,
		StartTime: ts(11, 0),
		EndTime:   ts(10, 0),
	}, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for an inverted window, got %v", err)
	}
}

func TestCreate_OverlapRejectedWithDetails(t *testing.T) {
	f := newEngine(t)
	mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	_, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   assetA,
		StartTime: ts(10, 30),
		EndTime:   ts(10, 45),
	}, stranger)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if appErr.Details["existing_start"] != ts(10, 0).Format(time.RFC3339) {
		t.Errorf("expected the existing window in the details, got %v", appErr.Details)
	}
}

func TestCreate_BackToBackRejected(t *testing.T) {
	f := newEngine(t)
	mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	_, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   assetA,
		StartTime: ts(11, 0),
		EndTime:   ts(12, 0),
	}, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT for a back-to-back window, got %v", err)
	}
}

func TestCreate_DifferentAssetsDoNotConflict(t *testing.T) {
	f := newEngine(t)
	mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	// Same window, different asset: no contention.
	mustCreate(t, f, owner, assetB, ts(10, 0), ts(11, 0))
}

func TestCreate_EmitsCreateEvent(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	events := f.notifier.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].assetID != assetA {
		t.Errorf("event routed to %s, want %s", events[0].assetID, assetA)
	}
	if events[0].change.Action != model.ActionCreate {
		t.Errorf("expected action %q, got %q", model.ActionCreate, events[0].change.Action)
	}
	if events[0].change.Data == nil || events[0].change.Data.ID != detail.ID {
		t.Errorf("expected event payload for %s, got %+v", detail.ID, events[0].change.Data)
	}
}

func TestCreate_HeldLockMapsToConflict(t *testing.T) {
	f := newEngine(t)

	if _, err := f.locks.Create(context.Background(), &model.UsageLock{ID: "usage_lock_" + assetA}); err != nil {
		t.Fatalf("failed to seed lock: %v", err)
	}

	_, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   assetA,
		StartTime: ts(10, 0),
		EndTime:   ts(11, 0),
	}, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT while the lock is held, got %v", err)
	}
}

func TestCreate_ReleasesLockOnConflict(t *testing.T) {
	f := newEngine(t)
	mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	_, err := f.svc.Create(context.Background(), &model.Usage{
		AssetID:   assetA,
		StartTime: ts(10, 0),
		EndTime:   ts(11, 0),
	}, stranger)
	if apperrors.AsAppError(err) == nil {
		t.Fatalf("expected a conflict, got %v", err)
	}

	// The lock must not leak: a non-overlapping window succeeds next.
	mustCreate(t, f, stranger, assetA, ts(14, 0), ts(15, 0))
}

func TestConcurrentCreates_ExactlyOneSucceeds(t *testing.T) {
	f := newEngine(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.Create(context.Background(), &model.Usage{
				AssetID:   assetA,
				StartTime: ts(10, 0),
				EndTime:   ts(11, 0),
			}, owner)
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for i, err := range errs {
		if err == nil {
			successes++
			continue
		}
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeConflict {
			t.Errorf("worker %d: expected CONFLICT, got %v", i, err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful create, got %d", successes)
	}

	count, _ := f.repo.Count(context.Background(), &model.UsageFilter{AssetID: assetA})
	if count != 1 {
		t.Fatalf("expected exactly 1 stored usage, got %d", count)
	}
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdate_StrangerForbiddenBeforeValidation(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	// The body is also invalid; ownership must be decided first.
	err := f.svc.Update(context.Background(), detail.ID, &model.Usage{
		AssetID:   assetA,
		StartTime: ts(13, 0),
		EndTime:   ts(12, 0),
	}, stranger)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN before validation, got %v", err)
	}
}

func TestUpdate_MissingUsageNotFound(t *testing.T) {
	f := newEngine(t)

	err := f.svc.Update(context.Background(), "usage-404", &model.Usage{
		AssetID:   assetA,
		StartTime: ts(10, 0),
		EndTime:   ts(11, 0),
	}, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdate_IDMismatchRejected(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	err := f.svc.Update(context.Background(), detail.ID, &model.Usage{
		ID:        "some-other-id",
		AssetID:   assetA,
		StartTime: ts(10, 0),
		EndTime:   ts(11, 0),
	}, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR on id mismatch, got %v", err)
	}
}

func TestUpdate_OwnerMovesOwnWindow(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	err := f.svc.Update(context.Background(), detail.ID, &model.Usage{
		AssetID:   assetA,
		StartTime: ts(14, 0),
		EndTime:   ts(15, 0),
	}, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved, err := f.repo.FindByID(context.Background(), detail.ID)
	if err != nil {
		t.Fatalf("failed to re-read usage: %v", err)
	}
	if !moved.StartTime.Equal(ts(14, 0)) {
		t.Errorf("expected moved start %v, got %v", ts(14, 0), moved.StartTime)
	}
	if moved.UserID != owner.SubjectID {
		t.Errorf("owner must survive the update, got %s", moved.UserID)
	}
}

func TestUpdate_ManagerOverridesOwnership(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	err := f.svc.Update(context.Background(), detail.ID, &model.Usage{
		AssetID:   assetA,
		StartTime: ts(14, 0),
		EndTime:   ts(15, 0),
	}, overseer)
	if err != nil {
		t.Fatalf("expected manager override to succeed, got %v", err)
	}
}

func TestUpdate_SelfOverlapAllowed(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	// Shrinking inside its own current window must not self-conflict.
	err := f.svc.Update(context.Background(), detail.ID, &model.Usage{
		AssetID:   assetA,
		StartTime: ts(10, 15),
		EndTime:   ts(10, 45),
	}, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_ConflictWithAnotherUsage(t *testing.T) {
	f := newEngine(t)
	mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))
	second := mustCreate(t, f, owner, assetA, ts(14, 0), ts(15, 0))

	err := f.svc.Update(context.Background(), second.ID, &model.Usage{
		AssetID:   assetA,
		StartTime: ts(10, 30),
		EndTime:   ts(11, 30),
	}, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestUpdate_EmitsUpdateEvent(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	if err := f.svc.Update(context.Background(), detail.ID, &model.Usage{
		AssetID:   assetA,
		StartTime: ts(14, 0),
		EndTime:   ts(15, 0),
	}, owner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := f.notifier.all()
	if len(events) != 2 {
		t.Fatalf("expected create + update events, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.change.Action != model.ActionUpdate {
		t.Errorf("expected action %q, got %q", model.ActionUpdate, last.change.Action)
	}
	if last.change.Data == nil || !last.change.Data.StartTime.Equal(ts(14, 0)) {
		t.Errorf("expected the new window in the payload, got %+v", last.change.Data)
	}
}

// ────────────────────────────────────────────────
// Delete
// ────────────────────────────────────────────────

func TestDelete_StrangerForbidden(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	err := f.svc.Delete(context.Background(), detail.ID, stranger)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	if _, err := f.repo.FindByID(context.Background(), detail.ID); err != nil {
		t.Error("usage must survive a forbidden delete")
	}
}

func TestDelete_ManagerOverridesOwnership(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	if err := f.svc.Delete(context.Background(), detail.ID, overseer); err != nil {
		t.Fatalf("expected manager delete to succeed, got %v", err)
	}
}

func TestDelete_EventCarriesOnlyIDAndRoutesToOldAsset(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	if err := f.svc.Delete(context.Background(), detail.ID, owner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := f.notifier.all()
	last := events[len(events)-1]
	if last.assetID != assetA {
		t.Errorf("delete event routed to %s, want %s", last.assetID, assetA)
	}
	if last.change.Action != model.ActionDelete {
		t.Errorf("expected action %q, got %q", model.ActionDelete, last.change.Action)
	}
	if last.change.Data == nil || last.change.Data.ID != detail.ID {
		t.Fatalf("expected id-only payload for %s, got %+v", detail.ID, last.change.Data)
	}
	if last.change.Data.AssetID != "" || !last.change.Data.StartTime.IsZero() {
		t.Errorf("delete payload must carry only the id, got %+v", last.change.Data)
	}
}

func TestDelete_HeldLockMapsToConflict(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	if _, err := f.locks.Create(context.Background(), &model.UsageLock{ID: "usage_lock_" + assetA}); err != nil {
		t.Fatalf("failed to seed lock: %v", err)
	}

	err := f.svc.Delete(context.Background(), detail.ID, owner)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT while the lock is held, got %v", err)
	}
	if _, err := f.repo.FindByID(context.Background(), detail.ID); err != nil {
		t.Error("usage must survive a delete that lost the lock")
	}
}

func TestDelete_FreesTheWindow(t *testing.T) {
	f := newEngine(t)
	detail := mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	if err := f.svc.Delete(context.Background(), detail.ID, owner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mustCreate(t, f, stranger, assetA, ts(10, 0), ts(11, 0))
}

// ────────────────────────────────────────────────
// List / Get
// ────────────────────────────────────────────────

func TestList_EnrichesDetails(t *testing.T) {
	f := newEngine(t)
	mustCreate(t, f, owner, assetA, ts(10, 0), ts(11, 0))

	details, total, err := f.svc.List(context.Background(), &model.UsageFilter{AssetID: assetA, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(details) != 1 {
		t.Fatalf("expected exactly one usage, got total=%d len=%d", total, len(details))
	}
	if details[0].Asset == nil || details[0].Asset.ID != assetA {
		t.Errorf("expected asset summary, got %+v", details[0].Asset)
	}
	if details[0].User == nil || details[0].User.ID != owner.SubjectID {
		t.Errorf("expected owner summary, got %+v", details[0].User)
	}
}

func TestGetByID_UnknownUsage(t *testing.T) {
	f := newEngine(t)

	_, err := f.svc.GetByID(context.Background(), "usage-404")

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
