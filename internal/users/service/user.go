package service

import (
	"context"
	"errors"
	"sync"

	"assetbook/internal/users/repository"
	"assetbook/internal/users/validator"
	"assetbook/pkg/config"
	apperrors "assetbook/pkg/errors"
	"assetbook/pkg/model"
	"assetbook/pkg/password"
	"assetbook/pkg/sanitizer"

	usererrors "assetbook/internal/users/errors"
)

const minPasswordLen = 8

type UserService interface {
	List(ctx context.Context, limit int, offset int64, actor model.Actor) ([]*model.User, int64, error)
	GetByID(ctx context.Context, id string, actor model.Actor) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	Create(ctx context.Context, user *model.User, plainPassword string, actor model.Actor) (*model.User, error)
	Update(ctx context.Context, id string, user *model.User, plainPassword string, actor model.Actor) error
	Delete(ctx context.Context, id string, actor model.Actor) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, userValidator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: userValidator,
		cfg:       cfg,
	}
}

func (s *userService) List(ctx context.Context, limit int, offset int64, actor model.Actor) ([]*model.User, int64, error) {
	if !actor.IsManager() {
		return nil, 0, apperrors.Forbidden("Only managers can list users")
	}

	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return users, count, nil
}

// GetByID lets a user read their own account; anything else takes the
// manager role.
func (s *userService) GetByID(ctx context.Context, id string, actor model.Actor) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	if actor.SubjectID != id && !actor.IsManager() {
		return nil, apperrors.Forbidden("No permission to view this user")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return user, nil
}

func (s *userService) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *userService) Create(ctx context.Context, user *model.User, plainPassword string, actor model.Actor) (*model.User, error) {
	if !actor.IsManager() {
		return nil, apperrors.Forbidden("Only managers can create users")
	}

	s.normalize(user)
	if len(user.Roles) == 0 {
		user.Roles = []string{model.RoleUser}
	}

	if err := s.validate(user); err != nil {
		return nil, err
	}
	if len(plainPassword) < minPasswordLen {
		return nil, apperrors.Validation("Password too short", map[string]any{
			"min_length": minPasswordLen,
		})
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}
	user.PasswordHash = hash

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, usererrors.ErrDuplicateUserName) {
			return nil, apperrors.Conflict("User name already taken")
		}
		s.cfg.Log.Error("Failed to create user", "user_name", user.UserName, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User created successfully", "id", user.ID, "user_name", user.UserName)
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, user *model.User, plainPassword string, actor model.Actor) error {
	if !actor.IsManager() {
		return apperrors.Forbidden("Only managers can modify users")
	}
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}
	if user.ID != "" && user.ID != id {
		return apperrors.Validation("Ids are different", map[string]any{
			"path_id": id,
			"body_id": user.ID,
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	// UserName is immutable; it anchors login and the unique index.
	user.UserName = existing.UserName
	s.normalize(user)
	if len(user.Roles) == 0 {
		user.Roles = existing.Roles
	}
	if err := s.validate(user); err != nil {
		return err
	}

	if plainPassword != "" {
		if len(plainPassword) < minPasswordLen {
			return apperrors.Validation("Password too short", map[string]any{
				"min_length": minPasswordLen,
			})
		}
		hash, err := password.Hash(plainPassword)
		if err != nil {
			return apperrors.Internal("Failed to hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, id, user); err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		s.cfg.Log.Error("Failed to update user", "id", id, "error", err)
		return apperrors.Internal("Failed to update user", err)
	}

	s.cfg.Log.Info("User updated successfully", "id", id)
	return nil
}

func (s *userService) Delete(ctx context.Context, id string, actor model.Actor) error {
	if !actor.IsManager() {
		return apperrors.Forbidden("Only managers can delete users")
	}
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}
	if actor.SubjectID == id {
		return apperrors.Validation("Cannot delete own account", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, usererrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to delete user", "id", id, "error", err)
		return apperrors.Internal("Failed to delete user", err)
	}

	s.cfg.Log.Info("User deleted successfully", "id", id)
	return nil
}

func (s *userService) normalize(u *model.User) {
	u.UserName = sanitizer.TrimAndNormalize(u.UserName)
	u.FullName = sanitizer.NormalizeName(u.FullName)
}

func (s *userService) validate(u *model.User) error {
	if err := s.validator.Validate(u); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		return apperrors.Validation("User validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *userService) mapLookupError(err error, id string) error {
	if errors.Is(err, usererrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", id)
	}
	if errors.Is(err, usererrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	return apperrors.Internal("Failed to retrieve user", err)
}
