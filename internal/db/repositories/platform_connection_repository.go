package repositories

import (
	"context"
	"database/sql"

	"notionflow/server/internal/constants"
	"notionflow/server/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

type ConnectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) *ConnectionRepository {
	return &ConnectionRepository{
		db: db,
	}
}

// UpsertConnection stores or refreshes the OAuth tokens for one user/platform pair
func (r ConnectionRepository) UpsertConnection(
	ctx context.Context,
	conn *entities.PlatformConnection) error {
	const query = `
		INSERT INTO platform_connections (user_id, platform, access_token, refresh_token, token_expiry, workspace_id, auto_sync, is_active)
		VALUES (:user_id, :platform, :access_token, :refresh_token, :token_expiry, :workspace_id, :auto_sync, true)
		ON CONFLICT (user_id, platform) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    token_expiry = EXCLUDED.token_expiry,
		    workspace_id = EXCLUDED.workspace_id,
		    auto_sync = EXCLUDED.auto_sync,
		    is_active = true,
		    updated_at = NOW()
	`

	_, err := r.db.NamedExecContext(ctx, query, conn)
	return err
}

// FindByUserAndPlatform returns one connection, (nil, nil) when absent
func (r ConnectionRepository) FindByUserAndPlatform(
	ctx context.Context,
	userID string,
	platform constants.Platform,
) (*entities.PlatformConnection, error) {
	const query = `
		SELECT * FROM platform_connections
		WHERE user_id = $1 AND platform = $2
	`

	var conn entities.PlatformConnection
	err := r.db.QueryRowxContext(ctx, query, userID, platform).StructScan(&conn)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &conn, nil
}

// ListActiveByUser returns a user's active connections
func (r ConnectionRepository) ListActiveByUser(
	ctx context.Context,
	userID string,
) ([]entities.PlatformConnection, error) {
	var conns []entities.PlatformConnection

	err := r.db.SelectContext(ctx, &conns, constants.GetConnectionsByUser, userID)
	if err != nil {
		return nil, err
	}

	return conns, nil
}

// ListAutoSync returns all active connections with auto-sync enabled, across users
func (r ConnectionRepository) ListAutoSync(ctx context.Context) ([]entities.PlatformConnection, error) {
	const query = `
		SELECT * FROM platform_connections
		WHERE is_active = true AND auto_sync = true
	`

	var conns []entities.PlatformConnection
	err := r.db.SelectContext(ctx, &conns, query)
	if err != nil {
		return nil, err
	}

	return conns, nil
}

// Deactivate soft-disconnects a platform for a user
func (r ConnectionRepository) Deactivate(
	ctx context.Context,
	userID string,
	platform constants.Platform,
) error {
	const query = `
		UPDATE platform_connections
		SET is_active = false, updated_at = NOW()
		WHERE user_id = $1 AND platform = $2
	`

	_, err := r.db.ExecContext(ctx, query, userID, platform)
	return err
}
