package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"multipost-bot/internal/database/models"
)

func (s *Store) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	var group models.Group
	err := s.db.GetContext(
		ctx,
		&group,
		"SELECT id, user_id, group_name FROM channel_groups WHERE id = ?",
		groupID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group %d: %w", groupID, err)
	}

	return &group, nil
}

func (s *Store) ListGroups(ctx context.Context, limit, offset int) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	err := s.db.SelectContext(
		ctx,
		&groups,
		"SELECT id, user_id, group_name FROM channel_groups ORDER BY group_name ASC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

func (s *Store) CountGroups(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM channel_groups"); err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}

	return count, nil
}

// CreateGroup inserts the group and its initial memberships in one
// transaction so a half-created group never becomes visible.
func (s *Store) CreateGroup(ctx context.Context, userID int64, name string, channelIDs []int64) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		"INSERT INTO channel_groups (user_id, group_name) VALUES (?, ?)",
		userID, name,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create group %q: %w", name, err)
	}

	groupID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, channelID := range channelIDs {
		_, err := tx.ExecContext(
			ctx,
			"INSERT INTO group_channels (group_id, channel_id) VALUES (?, ?) ON CONFLICT (group_id, channel_id) DO NOTHING",
			groupID, channelID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to add channel %d to group %d: %w", channelID, groupID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit group creation: %w", err)
	}

	return groupID, nil
}

// RenameGroup renames the group only if userID owns it; renaming somebody
// else's group is ErrNotFound.
func (s *Store) RenameGroup(ctx context.Context, groupID, userID int64, name string) error {
	res, err := s.db.ExecContext(
		ctx,
		"UPDATE channel_groups SET group_name = ? WHERE id = ? AND user_id = ?",
		name, groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename group %d: %w", groupID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteGroup is deliberately not owner-scoped: deletes are admin-only at
// the handler layer and an administrator may remove any group. Rename stays
// owner-scoped because it runs from the owner's settings flow.
func (s *Store) DeleteGroup(ctx context.Context, groupID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM channel_groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group %d: %w", groupID, err)
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM group_channels WHERE group_id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete memberships of group %d: %w", groupID, err)
	}

	return nil
}

func (s *Store) AddChannelToGroup(ctx context.Context, groupID, channelID int64) error {
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO group_channels (group_id, channel_id) VALUES (?, ?) ON CONFLICT (group_id, channel_id) DO NOTHING",
		groupID, channelID,
	)
	if err != nil {
		return fmt.Errorf("failed to add channel %d to group %d: %w", channelID, groupID, err)
	}

	return nil
}

func (s *Store) RemoveChannelFromGroup(ctx context.Context, groupID, channelID int64) error {
	_, err := s.db.ExecContext(
		ctx,
		"DELETE FROM group_channels WHERE group_id = ? AND channel_id = ?",
		groupID, channelID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove channel %d from group %d: %w", channelID, groupID, err)
	}

	return nil
}

func (s *Store) ListGroupChannels(ctx context.Context, groupID int64, limit, offset int) ([]models.Channel, error) {
	channels := make([]models.Channel, 0)
	err := s.db.SelectContext(
		ctx,
		&channels,
		`SELECT c.id, c.user_id, c.channel_id, c.channel_name, c.channel_link
		 FROM channels c
		 JOIN group_channels g ON c.channel_id = g.channel_id
		 WHERE g.group_id = ?
		 ORDER BY c.channel_id ASC
		 LIMIT ? OFFSET ?`,
		groupID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels of group %d: %w", groupID, err)
	}

	return channels, nil
}

func (s *Store) CountGroupChannels(ctx context.Context, groupID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM group_channels WHERE group_id = ?", groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels of group %d: %w", groupID, err)
	}

	return count, nil
}
