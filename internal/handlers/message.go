package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"multipost-bot/internal/broadcast"
	"multipost-bot/internal/database"
	"multipost-bot/internal/database/models"
	"multipost-bot/internal/session"
	"multipost-bot/pkg/telegoapi"
)

// HandleMessage routes non-command messages by the user's conversation
// state. Messages outside any flow are ignored.
func (h *MessageHandler) HandleMessage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if message.From == nil {
		return nil
	}
	userID := message.From.ID

	switch h.sessions.GetState(userID) {
	case session.StateAwaitingContent:
		return h.handleBroadcastContent(ctx, bot, message)
	case session.StateAwaitingChannelForward:
		return h.handleChannelRegistration(ctx, bot, message)
	case session.StateAwaitingGroupName:
		return h.handleGroupName(ctx, bot, message)
	case session.StateAwaitingGroupRename:
		return h.handleGroupRename(ctx, bot, message)
	default:
		log.Printf("[Handlers User:%d] Ignoring message %d outside any flow", userID, message.MessageID)
		return nil
	}
}

// handleBroadcastContent fires the fan-out with the user's current target
// selection. State and selection are cleared regardless of the outcome so a
// failed attempt never replays on the next message.
func (h *MessageHandler) handleBroadcastContent(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireRole(ctx, bot, message, models.RoleAdmin, models.RoleOperator) {
		return nil
	}
	userID := message.From.ID

	selection := h.sessions.Selection(userID)
	defer func() {
		h.sessions.SetState(userID, session.StateIdle)
		h.sessions.ClearSelection(userID)
	}()

	return h.engine.Broadcast(ctx, *message.From, message, selection, nil)
}

// handleChannelRegistration registers a new destination channel from a
// forwarded channel post, after verifying the bot administers the channel.
func (h *MessageHandler) handleChannelRegistration(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireRole(ctx, bot, message, models.RoleAdmin, models.RoleOperator) {
		return nil
	}
	localizer := h.defaultLocalizer()
	userID := message.From.ID

	origin := broadcast.ForwardedChannel(message)
	if origin == nil {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgForwardFromChannelPrompt", nil))
	}

	h.sessions.SetState(userID, session.StateIdle)

	if _, err := h.channels.GetChannel(ctx, origin.ID); err == nil {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgChannelAlreadyAdded", nil))
	} else if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("check channel %d: %w", origin.ID, err)
	}

	me, err := bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot identity: %w", err)
	}
	member, err := bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(origin.ID),
		UserID: me.ID,
	})
	if err != nil {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgBotNotMember", nil))
	}
	switch member.MemberStatus() {
	case telego.MemberStatusCreator, telego.MemberStatusAdministrator:
	default:
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgBotNotAdmin", nil))
	}

	link := broadcast.NormalizeLink(origin.Username)
	if link == "" {
		if chat, err := bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.ID(origin.ID)}); err == nil {
			link = broadcast.NormalizeLink(chat.InviteLink)
		}
	}

	if err := h.channels.SaveChannel(ctx, userID, origin.ID, origin.Title, link); err != nil {
		return fmt.Errorf("save channel %d: %w", origin.ID, err)
	}

	log.Printf("[Handlers User:%d] Registered channel %d (%s)", userID, origin.ID, origin.Title)
	return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgChannelAdded", nil))
}

// handleGroupName creates the composed group under the received name.
func (h *MessageHandler) handleGroupName(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.defaultLocalizer()
	userID := message.From.ID

	name := strings.TrimSpace(message.Text)
	if name == "" {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgGroupNamePrompt", nil))
	}

	snap := h.sessions.Snapshot(userID)
	channelIDs := make([]int64, 0, len(snap.GroupPick))
	for id := range snap.GroupPick {
		channelIDs = append(channelIDs, id)
	}

	groupID, err := h.groups.CreateGroup(ctx, userID, name, channelIDs)
	if err != nil {
		return fmt.Errorf("create group %q: %w", name, err)
	}

	h.sessions.Update(userID, func(s *session.Session) {
		s.State = session.StateIdle
		s.GroupPick = make(map[int64]struct{})
	})

	log.Printf("[Handlers User:%d] Created group %d (%s) with %d channel(s)", userID, groupID, name, len(channelIDs))
	return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgGroupCreated", nil))
}

// handleGroupRename renames the group the user currently operates on.
func (h *MessageHandler) handleGroupRename(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.defaultLocalizer()
	userID := message.From.ID

	name := strings.TrimSpace(message.Text)
	if name == "" {
		return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgGroupNamePrompt", nil))
	}

	snap := h.sessions.Snapshot(userID)
	if err := h.groups.RenameGroup(ctx, snap.ActiveGroupID, userID, name); err != nil {
		return fmt.Errorf("rename group %d: %w", snap.ActiveGroupID, err)
	}

	h.sessions.SetState(userID, session.StateIdle)
	return h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgGroupRenamed", nil))
}
