package database

import (
	"context"

	"multipost-bot/internal/database/models"
)

// UserRepository defines user CRUD used by the role gate and the
// user-management commands.
type UserRepository interface {
	// GetUser returns the user with the given Telegram ID or ErrNotFound.
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	AddUser(ctx context.Context, userID int64, role models.Role) error
	UpdateUserRole(ctx context.Context, userID int64, role models.Role) error
	DeleteUser(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ChannelRepository defines destination-channel CRUD.
type ChannelRepository interface {
	// GetChannel returns the channel with the given Telegram chat ID or
	// ErrNotFound.
	GetChannel(ctx context.Context, channelID int64) (*models.Channel, error)
	ListChannels(ctx context.Context, limit, offset int) ([]models.Channel, error)
	ListUserChannels(ctx context.Context, userID int64, limit, offset int) ([]models.Channel, error)
	SaveChannel(ctx context.Context, userID, channelID int64, name, link string) error
	DeleteChannel(ctx context.Context, channelID int64) error
	CountChannels(ctx context.Context) (int, error)
	CountUserChannels(ctx context.Context, userID int64) (int, error)
}

// GroupRepository defines channel-group CRUD including the group/channel
// membership join. Re-adding an existing membership is a no-op.
type GroupRepository interface {
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)
	ListGroups(ctx context.Context, limit, offset int) ([]models.Group, error)
	CountGroups(ctx context.Context) (int, error)
	CreateGroup(ctx context.Context, userID int64, name string, channelIDs []int64) (int64, error)
	RenameGroup(ctx context.Context, groupID, userID int64, name string) error
	DeleteGroup(ctx context.Context, groupID int64) error
	AddChannelToGroup(ctx context.Context, groupID, channelID int64) error
	RemoveChannelFromGroup(ctx context.Context, groupID, channelID int64) error
	ListGroupChannels(ctx context.Context, groupID int64, limit, offset int) ([]models.Channel, error)
	CountGroupChannels(ctx context.Context, groupID int64) (int, error)
}

// PostRepository persists the append-only broadcast audit log.
type PostRepository interface {
	SavePost(ctx context.Context, post models.Post) error
	ListPosts(ctx context.Context, channelID int64) ([]models.Post, error)
}
