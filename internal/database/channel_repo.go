package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"multipost-bot/internal/database/models"
)

func (s *Store) GetChannel(ctx context.Context, channelID int64) (*models.Channel, error) {
	var channel models.Channel
	err := s.db.GetContext(
		ctx,
		&channel,
		"SELECT id, user_id, channel_id, channel_name, channel_link FROM channels WHERE channel_id = ?",
		channelID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %d: %w", channelID, err)
	}

	return &channel, nil
}

func (s *Store) ListChannels(ctx context.Context, limit, offset int) ([]models.Channel, error) {
	channels := make([]models.Channel, 0)
	err := s.db.SelectContext(
		ctx,
		&channels,
		"SELECT id, user_id, channel_id, channel_name, channel_link FROM channels ORDER BY channel_name ASC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	return channels, nil
}

func (s *Store) ListUserChannels(ctx context.Context, userID int64, limit, offset int) ([]models.Channel, error) {
	channels := make([]models.Channel, 0)
	err := s.db.SelectContext(
		ctx,
		&channels,
		"SELECT id, user_id, channel_id, channel_name, channel_link FROM channels WHERE user_id = ? ORDER BY channel_name ASC LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels of user %d: %w", userID, err)
	}

	return channels, nil
}

func (s *Store) SaveChannel(ctx context.Context, userID, channelID int64, name, link string) error {
	channel := models.Channel{
		UserID:      userID,
		ChannelID:   channelID,
		ChannelName: name,
		ChannelLink: link,
	}

	query := `
		INSERT INTO channels (user_id, channel_id, channel_name, channel_link)
		VALUES (:user_id, :channel_id, :channel_name, :channel_link)
	`

	query, args, err := sqlx.Named(query, &channel)
	if err != nil {
		return err
	}

	query = s.db.Rebind(query)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save channel %d: %w", channelID, err)
	}

	return nil
}

// DeleteChannel is not owner-scoped: channel deletion is admin-only at the
// handler layer and an administrator may remove any user's channels.
func (s *Store) DeleteChannel(ctx context.Context, channelID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM channels WHERE channel_id = ?", channelID)
	if err != nil {
		return fmt.Errorf("failed to delete channel %d: %w", channelID, err)
	}

	// Memberships referencing the channel are dead rows once the channel
	// itself is gone.
	_, err = s.db.ExecContext(ctx, "DELETE FROM group_channels WHERE channel_id = ?", channelID)
	if err != nil {
		return fmt.Errorf("failed to delete group memberships of channel %d: %w", channelID, err)
	}

	return nil
}

func (s *Store) CountChannels(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM channels"); err != nil {
		return 0, fmt.Errorf("failed to count channels: %w", err)
	}

	return count, nil
}

func (s *Store) CountUserChannels(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM channels WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels of user %d: %w", userID, err)
	}

	return count, nil
}
