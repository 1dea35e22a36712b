package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
	"github.com/keyxmakerx/a11y-engine/internal/apperror"
	"github.com/keyxmakerx/a11y-engine/internal/sanitize"
)

// cacheKeyPrefix is the Redis key prefix of the per-user profile list cache.
// Each user has a generation counter at <prefix><user>:v and the list itself
// lives at <prefix><user>:<generation>. Writes bump the counter, so a list
// read from the database before a write can only land under a generation
// nobody reads any more, where it ages out with the TTL.
const cacheKeyPrefix = "a11y:profiles:"

func listVersionKey(userID string) string { return cacheKeyPrefix + userID + ":v" }

func listCacheKey(userID, version string) string { return cacheKeyPrefix + userID + ":" + version }

// ProfileService defines the business logic contract for profiles.
type ProfileService interface {
	List(ctx context.Context, userID string) ([]a11y.Profile, error)
	Create(ctx context.Context, userID string, input ProfileInput) (*a11y.Profile, error)
	Update(ctx context.Context, userID, id string, input ProfileInput) (*a11y.Profile, error)
	Delete(ctx context.Context, userID, id string) error
}

// profileService implements ProfileService. The Redis client is optional;
// without it every List goes to the database.
type profileService struct {
	repo     ProfileRepository
	redis    *redis.Client
	cacheTTL time.Duration
	model    a11y.Model
}

// NewProfileService creates a new profile service.
func NewProfileService(repo ProfileRepository, rdb *redis.Client, cacheTTL time.Duration) ProfileService {
	return &profileService{
		repo:     repo,
		redis:    rdb,
		cacheTTL: cacheTTL,
		model:    a11y.DefaultModel(),
	}
}

// List returns the user's profiles, served from the list cache when warm.
func (s *profileService) List(ctx context.Context, userID string) ([]a11y.Profile, error) {
	// The generation is read before the database so a concurrent write
	// always outdates whatever this call stores.
	version, cacheable := s.listVersion(ctx, userID)
	if cacheable {
		if profiles, ok := s.cachedList(ctx, userID, version); ok {
			return profiles, nil
		}
	}

	profiles, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing profiles: %w", err))
	}

	if cacheable {
		s.storeList(ctx, userID, version, profiles)
	}
	return profiles, nil
}

// Create validates input and stores a new profile.
func (s *profileService) Create(ctx context.Context, userID string, input ProfileInput) (*a11y.Profile, error) {
	p, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.NameExists(ctx, userID, p.Name, "")
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking profile name: %w", err))
	}
	if exists {
		return nil, errDuplicateName()
	}

	if err := s.repo.Create(ctx, userID, p); err != nil {
		return nil, passAppError(err, "creating profile")
	}

	s.invalidate(ctx, userID)
	slog.Info("profile created",
		slog.String("user_id", userID),
		slog.String("profile_id", p.ID),
	)
	return p, nil
}

// Update validates input and overwrites the user's profile id.
func (s *profileService) Update(ctx context.Context, userID, id string, input ProfileInput) (*a11y.Profile, error) {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return nil, passAppError(err, "finding profile")
	}

	p, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	p.ID = id

	exists, err := s.repo.NameExists(ctx, userID, p.Name, id)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking profile name: %w", err))
	}
	if exists {
		return nil, errDuplicateName()
	}

	if err := s.repo.Update(ctx, userID, p); err != nil {
		return nil, passAppError(err, "updating profile")
	}

	s.invalidate(ctx, userID)
	slog.Info("profile updated",
		slog.String("user_id", userID),
		slog.String("profile_id", id),
	)
	return p, nil
}

// Delete removes the user's profile id.
func (s *profileService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return passAppError(err, "deleting profile")
	}

	s.invalidate(ctx, userID)
	slog.Info("profile deleted",
		slog.String("user_id", userID),
		slog.String("profile_id", id),
	)
	return nil
}

// validate sanitizes the text fields and checks the bundle against the
// model. Errors are 422 AppErrors naming the offending field.
func (s *profileService) validate(input ProfileInput) (*a11y.Profile, error) {
	name := sanitize.Name(input.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return nil, apperror.NewValidation("profile name must be 1 to 100 characters").WithField(FieldProfileName)
	}

	description := sanitize.PlainText(input.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return nil, apperror.NewValidation("description must be at most 1000 characters").WithField(FieldDescription)
	}

	if err := s.model.Validate(input.Bundle); err != nil {
		var ive *a11y.InvalidValueError
		if errors.As(err, &ive) {
			return nil, apperror.NewValidation(ive.Error()).WithField(string(ive.Field))
		}
		return nil, apperror.NewValidation(err.Error())
	}

	return &a11y.Profile{
		Name:        name,
		Description: description,
		Bundle:      input.Bundle,
	}, nil
}

// --- List cache ---

// listVersion returns the user's current cache generation. A missing counter
// is generation 0. ok is false when the cache is disabled or unreachable.
func (s *profileService) listVersion(ctx context.Context, userID string) (string, bool) {
	if s.redis == nil {
		return "", false
	}

	version, err := s.redis.Get(ctx, listVersionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", true
	}
	if err != nil {
		slog.Warn("profile cache read failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return "", false
	}
	return version, true
}

func (s *profileService) cachedList(ctx context.Context, userID, version string) ([]a11y.Profile, bool) {
	data, err := s.redis.Get(ctx, listCacheKey(userID, version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("profile cache read failed",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
		return nil, false
	}

	profiles, err := a11y.DecodeProfiles(bytes.NewReader(data))
	if err != nil {
		slog.Warn("discarding corrupt profile cache entry",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, false
	}
	return profiles, true
}

func (s *profileService) storeList(ctx context.Context, userID, version string, profiles []a11y.Profile) {
	data, err := json.Marshal(profiles)
	if err != nil {
		slog.Warn("marshaling profile cache entry", slog.Any("error", err))
		return
	}
	if err := s.redis.Set(ctx, listCacheKey(userID, version), data, s.cacheTTL).Err(); err != nil {
		slog.Warn("profile cache write failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

// invalidate moves the user to a new cache generation. The previous list
// entry is left to expire.
func (s *profileService) invalidate(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Incr(ctx, listVersionKey(userID)).Err(); err != nil {
		slog.Warn("profile cache invalidation failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

// passAppError returns err unchanged when it is already an AppError and
// wraps it as an internal error otherwise.
func passAppError(err error, op string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewInternal(fmt.Errorf("%s: %w", op, err))
}
