package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"multipost-bot/internal/database"
	"multipost-bot/internal/database/models"
	"multipost-bot/internal/session"
	"multipost-bot/pkg/telegoapi"
)

// HandleStart greets the user according to their role. Unknown users get
// the no-access greeting, same as RoleUser.
func (h *MessageHandler) HandleStart(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.defaultLocalizer()

	role, err := h.gate.Role(ctx, message.From.ID)
	if err != nil {
		role = models.RoleUser
	}

	var key string
	switch role {
	case models.RoleAdmin:
		key = "MsgWelcomeAdmin"
	case models.RoleOperator:
		key = "MsgWelcomeOperator"
	default:
		key = "MsgWelcomeUser"
	}

	log.Printf("[Cmd:start User:%d] Role %q", message.From.ID, role)
	return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, key, nil))
}

// HandleChannels opens the channel picker.
func (h *MessageHandler) HandleChannels(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireRole(ctx, bot, message, models.RoleAdmin, models.RoleOperator) {
		return nil
	}

	h.sessions.SetState(message.From.ID, session.StateIdle)
	return h.showChannelsPicker(ctx, bot, message.From.ID, targetForMessage(message))
}

// HandleGroups opens the group list.
func (h *MessageHandler) HandleGroups(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireRole(ctx, bot, message, models.RoleAdmin, models.RoleOperator) {
		return nil
	}

	h.sessions.Update(message.From.ID, func(s *session.Session) {
		s.State = session.StateIdle
		s.ActiveGroupID = 0
		s.GroupEditMode = ""
	})
	return h.showGroupsPicker(ctx, bot, message.From.ID, targetForMessage(message))
}

// HandlePosts opens the sent-post export picker.
func (h *MessageHandler) HandlePosts(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireRole(ctx, bot, message, models.RoleAdmin, models.RoleOperator) {
		return nil
	}

	h.sessions.SetState(message.From.ID, session.StateIdle)
	return h.showPostsPicker(ctx, bot, message.From.ID, targetForMessage(message))
}

// requireAdmin is the gate for the user-management commands. Unlike
// requireRole it answers with the insufficient-rights message, matching
// the admin-only command surface.
func (h *MessageHandler) requireAdmin(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) bool {
	allowed, err := h.gate.Authorize(ctx, message.From.ID, models.RoleAdmin)
	if err != nil {
		log.Printf("[Handlers User:%d] Role check failed: %v", message.From.ID, err)
	}
	if !allowed {
		localizer := h.defaultLocalizer()
		_ = h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgAdminOnly", nil))
	}
	return allowed
}

// commandArgs splits a command message into its arguments, dropping the
// command itself.
func commandArgs(message telego.Message) []string {
	fields := strings.Fields(message.Text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// HandleAddUser registers a new bot user: /add_user <user_id> <role>.
func (h *MessageHandler) HandleAddUser(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.defaultLocalizer()

	args := commandArgs(message)
	if len(args) != 2 {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserAddUsage", nil))
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserIDNumeric", nil))
	}
	role := models.Role(strings.ToLower(args[1]))
	if !role.Valid() {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserRoleInvalid", nil))
	}

	if _, err := h.users.GetUser(ctx, userID); err == nil {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserExists", map[string]interface{}{"ID": userID}))
	} else if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("check user %d: %w", userID, err)
	}

	if err := h.users.AddUser(ctx, userID, role); err != nil {
		return fmt.Errorf("add user %d: %w", userID, err)
	}

	log.Printf("[Cmd:add_user Admin:%d] Added user %d with role %q", message.From.ID, userID, role)
	return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserAdded", map[string]interface{}{
		"ID":   userID,
		"Role": string(role),
	}))
}

// HandleUpdateUser changes a user's role: /update_user <user_id> <role>.
func (h *MessageHandler) HandleUpdateUser(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.defaultLocalizer()

	args := commandArgs(message)
	if len(args) != 2 {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserUpdateUsage", nil))
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserIDNumeric", nil))
	}
	role := models.Role(strings.ToLower(args[1]))
	if !role.Valid() {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserRoleInvalid", nil))
	}

	if err := h.users.UpdateUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserNotFound", map[string]interface{}{"ID": userID}))
		}
		return fmt.Errorf("update user %d: %w", userID, err)
	}

	log.Printf("[Cmd:update_user Admin:%d] Updated user %d to role %q", message.From.ID, userID, role)
	return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserUpdated", map[string]interface{}{
		"ID":   userID,
		"Role": string(role),
	}))
}

// HandleDeleteUser removes a bot user: /delete_user <user_id>.
func (h *MessageHandler) HandleDeleteUser(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.defaultLocalizer()

	args := commandArgs(message)
	if len(args) != 1 {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserDeleteUsage", nil))
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserIDNumeric", nil))
	}

	if err := h.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserNotFound", map[string]interface{}{"ID": userID}))
		}
		return fmt.Errorf("delete user %d: %w", userID, err)
	}

	log.Printf("[Cmd:delete_user Admin:%d] Deleted user %d", message.From.ID, userID)
	return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUserDeleted", map[string]interface{}{"ID": userID}))
}

// HandleViewUsers lists all registered users and their roles.
func (h *MessageHandler) HandleViewUsers(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.defaultLocalizer()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgUsersEmpty", nil))
	}

	var b strings.Builder
	b.WriteString(h.msg(localizer, "MsgUsersListHeader", nil))
	for _, user := range users {
		fmt.Fprintf(&b, "\n%d - %s", user.UserID, user.Role)
	}
	return h.reply(ctx, bot, message.Chat.ID, b.String())
}
