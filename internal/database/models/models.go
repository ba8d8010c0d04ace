package models

import "time"

// Role is the single authorization attribute of a bot user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleUser     Role = "user"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator || r == RoleUser
}

// User is a bot user allowed (or not) to use the broadcast commands.
type User struct {
	ID     int64 `db:"id"`
	UserID int64 `db:"user_id"`
	Role   Role  `db:"role"`
}

// Channel is a destination channel administered by the bot. ChannelID is the
// Telegram chat ID and is globally unique.
type Channel struct {
	ID          int64  `db:"id"`
	UserID      int64  `db:"user_id"`
	ChannelID   int64  `db:"channel_id"`
	ChannelName string `db:"channel_name"`
	ChannelLink string `db:"channel_link"`
}

// Group is a named set of channels used as a broadcast target. Membership
// lives in the group_channels join table; an empty group is valid.
type Group struct {
	ID        int64  `db:"id"`
	UserID    int64  `db:"user_id"`
	GroupName string `db:"group_name"`
}

// Post is an append-only audit record, one row per channel per delivered
// broadcast. PostID is the requester's source message ID.
type Post struct {
	ID          int64     `db:"id"`
	ChannelID   int64     `db:"channel_id"`
	ChannelName string    `db:"channel_name"`
	PostID      int       `db:"post_id"`
	PostText    string    `db:"post_text"`
	UserID      int64     `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
}
