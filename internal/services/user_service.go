package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/models/dtos"
	"notionflow/server/internal/models/entities"
)

// UserService handles user accounts and their platform connections
type UserService struct {
	userRepo *repositories.UserRepository
	connRepo *repositories.ConnectionRepository
	cache    common.CacheInterface
}

func NewUserService(
	userRepo *repositories.UserRepository,
	connRepo *repositories.ConnectionRepository,
	cache common.CacheInterface,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		connRepo: connRepo,
		cache:    cache,
	}
}

// GetOrCreateUser looks a user up by email, creating the account on first
// contact
func (s *UserService) GetOrCreateUser(ctx context.Context, email, name string) (*entities.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	newUser := &entities.User{
		Email:    email,
		Name:     name,
		IsActive: true,
	}
	if err := s.userRepo.InsertUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[UserService] Created user: id=%s, email=%s", newUser.ID, newUser.Email)
	return newUser, nil
}

// GetUser fetches a user by id, (nil, nil) when absent
func (s *UserService) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// UpsertConnection stores or refreshes a platform connection's tokens and
// drops the stale cache entry
func (s *UserService) UpsertConnection(
	ctx context.Context,
	userID string,
	req *dtos.ConnectionUpsertRequest,
) (*entities.PlatformConnection, error) {
	platform := constants.Platform(req.Platform)
	if !platform.IsSupported() {
		return nil, fmt.Errorf("unsupported platform: %s", req.Platform)
	}
	if req.AccessToken == "" {
		return nil, errors.New("access_token is required")
	}

	conn := &entities.PlatformConnection{
		UserID:       userID,
		Platform:     platform,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		WorkspaceID:  req.WorkspaceID,
		AutoSync:     req.AutoSync,
	}
	if req.ExpiresIn != nil {
		expiry := time.Now().Add(time.Duration(*req.ExpiresIn) * time.Second)
		conn.TokenExpiry = &expiry
	}

	if err := s.connRepo.UpsertConnection(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to upsert connection: %w", err)
	}

	s.cache.Delete(common.ConnectionCacheKey(userID, platform))

	return s.connRepo.FindByUserAndPlatform(ctx, userID, platform)
}

// ListConnections returns the user's active platform connections
func (s *UserService) ListConnections(ctx context.Context, userID string) ([]entities.PlatformConnection, error) {
	return s.connRepo.ListActiveByUser(ctx, userID)
}

// DisconnectPlatform deactivates a connection and drops its cache entry
func (s *UserService) DisconnectPlatform(ctx context.Context, userID string, platform constants.Platform) error {
	if err := s.connRepo.Deactivate(ctx, userID, platform); err != nil {
		return fmt.Errorf("failed to deactivate connection: %w", err)
	}

	s.cache.Delete(common.ConnectionCacheKey(userID, platform))
	return nil
}
