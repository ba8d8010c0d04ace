package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"multipost-bot/internal/auth"
	"multipost-bot/internal/database"
	"multipost-bot/internal/session"
	"multipost-bot/pkg/telegoapi"
)

// BroadcastEngine is the part of the broadcast engine the handlers drive.
type BroadcastEngine interface {
	Broadcast(ctx context.Context, requester telego.User, message telego.Message, channelIDs []int64, sendAt *time.Time) error
	AppendAlbumPart(message telego.Message) bool
}

// CommandHandlerFunc defines the signature for command handlers.
type CommandHandlerFunc func(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error

// Command defines a bot command with its handler and description key.
type Command struct {
	Command     string
	Description string // locale key, resolved when registering with Telegram
	Handler     CommandHandlerFunc
	AdminOnly   bool
}

// MessageHandler holds dependencies and handles incoming updates: commands,
// inline-keyboard callbacks and the stateful message flows.
type MessageHandler struct {
	gate     auth.GateInterface
	users    database.UserRepository
	channels database.ChannelRepository
	groups   database.GroupRepository
	posts    database.PostRepository

	sessions *session.Manager
	engine   BroadcastEngine

	perPage  int
	commands []Command
}

// NewMessageHandler creates a new MessageHandler with all dependencies.
func NewMessageHandler(
	gate auth.GateInterface,
	users database.UserRepository,
	channels database.ChannelRepository,
	groups database.GroupRepository,
	posts database.PostRepository,
	sessions *session.Manager,
	engine BroadcastEngine,
	perPage int,
) (*MessageHandler, error) {
	if gate == nil {
		return nil, fmt.Errorf("role gate cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository cannot be nil")
	}
	if channels == nil {
		return nil, fmt.Errorf("channel repository cannot be nil")
	}
	if groups == nil {
		return nil, fmt.Errorf("group repository cannot be nil")
	}
	if posts == nil {
		return nil, fmt.Errorf("post repository cannot be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("broadcast engine cannot be nil")
	}
	if perPage <= 0 {
		perPage = 20
	}

	h := &MessageHandler{
		gate:     gate,
		users:    users,
		channels: channels,
		groups:   groups,
		posts:    posts,
		sessions: sessions,
		engine:   engine,
		perPage:  perPage,
	}
	h.commands = []Command{
		{Command: "start", Description: "CmdStartDescription", Handler: h.HandleStart},
		{Command: "channels", Description: "CmdChannelsDescription", Handler: h.HandleChannels},
		{Command: "groups", Description: "CmdGroupsDescription", Handler: h.HandleGroups},
		{Command: "posts", Description: "CmdPostsDescription", Handler: h.HandlePosts},
		{Command: "add_user", Description: "CmdAddUserDescription", Handler: h.HandleAddUser, AdminOnly: true},
		{Command: "update_user", Description: "CmdUpdateUserDescription", Handler: h.HandleUpdateUser, AdminOnly: true},
		{Command: "delete_user", Description: "CmdDeleteUserDescription", Handler: h.HandleDeleteUser, AdminOnly: true},
		{Command: "view_user", Description: "CmdViewUsersDescription", Handler: h.HandleViewUsers, AdminOnly: true},
	}

	return h, nil
}

// GetCommandHandler returns the handler function for a command name, or nil.
func (h *MessageHandler) GetCommandHandler(command string) CommandHandlerFunc {
	for _, cmd := range h.commands {
		if cmd.Command == command {
			return cmd.Handler
		}
	}
	return nil
}

// BotCommands returns the command list for Telegram's command menu, with
// localized descriptions.
func (h *MessageHandler) BotCommands() []telego.BotCommand {
	localizer := h.defaultLocalizer()
	cmds := make([]telego.BotCommand, 0, len(h.commands))
	for _, cmd := range h.commands {
		cmds = append(cmds, telego.BotCommand{
			Command:     cmd.Command,
			Description: h.msg(localizer, cmd.Description, nil),
		})
	}
	return cmds
}
