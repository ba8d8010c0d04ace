package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"multipost-bot/internal/database/models"
)

func (s *Store) SavePost(ctx context.Context, post models.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO posts (channel_id, channel_name, post_id, post_text, user_id, created_at)
		VALUES (:channel_id, :channel_name, :post_id, :post_text, :user_id, :created_at)
	`

	query, args, err := sqlx.Named(query, &post)
	if err != nil {
		return err
	}

	query = s.db.Rebind(query)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save post for channel %d: %w", post.ChannelID, err)
	}

	return nil
}

func (s *Store) ListPosts(ctx context.Context, channelID int64) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := s.db.SelectContext(
		ctx,
		&posts,
		"SELECT id, channel_id, channel_name, post_id, post_text, user_id, created_at FROM posts WHERE channel_id = ? ORDER BY created_at DESC",
		channelID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts of channel %d: %w", channelID, err)
	}

	return posts, nil
}
