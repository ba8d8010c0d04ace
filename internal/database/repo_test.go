package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multipost-bot/internal/database/migrations"
	"multipost-bot/internal/database/models"
)

// setupStore opens a fresh in-memory sqlite database with migrations
// applied. One connection only: every new sqlite :memory: connection is a
// brand new empty database.
func setupStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Run(db.DB))

	return NewStore(db)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.GetUser(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.AddUser(ctx, 42, models.RoleOperator))

	user, err := store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.UserID)
	assert.Equal(t, models.RoleOperator, user.Role)

	require.NoError(t, store.UpdateUserRole(ctx, 42, models.RoleAdmin))
	user, err = store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	assert.ErrorIs(t, store.UpdateUserRole(ctx, 43, models.RoleAdmin), ErrNotFound)

	require.NoError(t, store.AddUser(ctx, 43, models.RoleUser))
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, store.DeleteUser(ctx, 43))
	assert.ErrorIs(t, store.DeleteUser(ctx, 43), ErrNotFound)
}

func TestChannelRepository(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.GetChannel(ctx, -1001)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveChannel(ctx, 1, -1001, "Zulu", "https://t.me/zulu"))
	require.NoError(t, store.SaveChannel(ctx, 1, -1002, "Alpha", "https://t.me/alpha"))
	require.NoError(t, store.SaveChannel(ctx, 2, -1003, "Mike", ""))

	channel, err := store.GetChannel(ctx, -1001)
	require.NoError(t, err)
	assert.Equal(t, "Zulu", channel.ChannelName)
	assert.Equal(t, "https://t.me/zulu", channel.ChannelLink)

	count, err := store.CountChannels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	channels, err := store.ListChannels(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, channels, 3)
	assert.Equal(t, "Alpha", channels[0].ChannelName, "channels list alphabetically")

	channels, err = store.ListChannels(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "Zulu", channels[0].ChannelName)

	userCount, err := store.CountUserChannels(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, userCount)

	userChannels, err := store.ListUserChannels(ctx, 2, 10, 0)
	require.NoError(t, err)
	require.Len(t, userChannels, 1)
	assert.Equal(t, int64(-1003), userChannels[0].ChannelID)

	require.NoError(t, store.DeleteChannel(ctx, -1001))
	_, err = store.GetChannel(ctx, -1001)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChannelNamesAreParameterized(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	hostile := `Robert'); DROP TABLE channels;--`
	require.NoError(t, store.SaveChannel(ctx, 1, -1001, hostile, ""))

	channel, err := store.GetChannel(ctx, -1001)
	require.NoError(t, err)
	assert.Equal(t, hostile, channel.ChannelName)

	count, err := store.CountChannels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGroupRepository(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.SaveChannel(ctx, 1, -1001, "Alpha", ""))
	require.NoError(t, store.SaveChannel(ctx, 1, -1002, "Beta", ""))
	require.NoError(t, store.SaveChannel(ctx, 1, -1003, "Gamma", ""))

	groupID, err := store.CreateGroup(ctx, 1, "News", []int64{-1001, -1002})
	require.NoError(t, err)

	group, err := store.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, "News", group.GroupName)

	count, err := store.CountGroupChannels(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Duplicate memberships are a no-op.
	require.NoError(t, store.AddChannelToGroup(ctx, groupID, -1001))
	count, err = store.CountGroupChannels(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.AddChannelToGroup(ctx, groupID, -1003))
	members, err := store.ListGroupChannels(ctx, groupID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	require.NoError(t, store.RemoveChannelFromGroup(ctx, groupID, -1002))
	count, err = store.CountGroupChannels(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Deleting a channel prunes its memberships too.
	require.NoError(t, store.DeleteChannel(ctx, -1003))
	count, err = store.CountGroupChannels(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, store.RenameGroup(ctx, groupID, 999, "Hijacked"), ErrNotFound,
		"renaming somebody else's group must not match")
	require.NoError(t, store.RenameGroup(ctx, groupID, 1, "Evening News"))
	group, err = store.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, "Evening News", group.GroupName)

	require.NoError(t, store.DeleteGroup(ctx, groupID))
	_, err = store.GetGroup(ctx, groupID)
	assert.ErrorIs(t, err, ErrNotFound)
	count, err = store.CountGroupChannels(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	older := models.Post{
		ChannelID:   -1001,
		ChannelName: "Alpha",
		PostID:      10,
		PostText:    "first",
		UserID:      1,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
	newer := models.Post{
		ChannelID:   -1001,
		ChannelName: "Alpha",
		PostID:      11,
		PostText:    "second",
		UserID:      1,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.SavePost(ctx, older))
	require.NoError(t, store.SavePost(ctx, newer))
	require.NoError(t, store.SavePost(ctx, models.Post{ChannelID: -1002, ChannelName: "Beta", PostID: 12, UserID: 1}))

	posts, err := store.ListPosts(ctx, -1001)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].PostText, "newest post first")
	assert.Equal(t, "first", posts[1].PostText)

	posts, err = store.ListPosts(ctx, -1003)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
