package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"multipost-bot/internal/broadcast"
	"multipost-bot/internal/database/models"
	"multipost-bot/internal/session"
	"multipost-bot/pkg/telegoapi"
)

// HandleCallbackQuery routes inline-keyboard presses. Every picker action
// requires at least operator rights; unhandled data answers with an alert
// instead of leaving the button spinning.
func (h *MessageHandler) HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	if !h.requireRoleCallback(ctx, bot, query, models.RoleAdmin, models.RoleOperator) {
		return nil
	}

	data := query.Data
	log.Printf("[Callback User:%d] %s", query.From.ID, data)

	switch {
	case strings.HasPrefix(data, "channels_"):
		return h.handleChannelsCallback(ctx, bot, query)
	case strings.HasPrefix(data, "groups_"):
		return h.handleGroupsCallback(ctx, bot, query)
	case strings.HasPrefix(data, "group_add_toggle_"), strings.HasPrefix(data, "new_group_"):
		return h.handleNewGroupCallback(ctx, bot, query)
	case strings.HasPrefix(data, "group_"):
		return h.handleGroupViewCallback(ctx, bot, query)
	case strings.HasPrefix(data, "posts_"):
		return h.handlePostsCallback(ctx, bot, query)
	default:
		localizer := h.defaultLocalizer()
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgCallbackNotHandled", nil))
		return nil
	}
}

// suffixID parses the numeric tail of callback data like "channels_toggle_42".
func suffixID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("callback data %q: %w", data, err)
	}
	return id, nil
}

func (h *MessageHandler) handleChannelsCallback(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	localizer := h.defaultLocalizer()
	userID := query.From.ID
	target := targetForQuery(query)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "channels_toggle_"):
		channelID, err := suffixID(data, "channels_toggle_")
		if err != nil {
			return err
		}
		h.sessions.ToggleSelected(userID, channelID)

	case data == "channels_prev":
		h.sessions.Update(userID, func(s *session.Session) { s.ChannelsPage-- })
	case data == "channels_next":
		h.sessions.Update(userID, func(s *session.Session) { s.ChannelsPage++ })

	case data == "channels_all":
		ids, err := h.allChannelIDs(ctx)
		if err != nil {
			return err
		}
		h.sessions.SetSelection(userID, ids)

	case data == "channels_clear":
		h.sessions.ClearSelection(userID)

	case data == "channels_add":
		if !h.requireAdminCallback(ctx, bot, query) {
			return nil
		}
		h.sessions.SetState(userID, session.StateAwaitingChannelForward)
		h.answer(ctx, bot, query.ID)
		return h.reply(ctx, bot, target.chatID, h.msg(localizer, "MsgForwardFromChannelPrompt", nil))

	case data == "channels_delete":
		if !h.requireAdminCallback(ctx, bot, query) {
			return nil
		}
		selected := h.sessions.Selection(userID)
		if len(selected) == 0 {
			h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgNothingSelected", nil))
			return nil
		}
		for _, channelID := range selected {
			if err := h.channels.DeleteChannel(ctx, channelID); err != nil {
				return fmt.Errorf("delete channel %d: %w", channelID, err)
			}
		}
		h.sessions.ClearSelection(userID)
		_ = h.reply(ctx, bot, target.chatID, h.msg(localizer, "MsgChannelsDeleted", nil))

	case data == "channels_send":
		if len(h.sessions.Selection(userID)) == 0 {
			h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgNothingSelected", nil))
			return nil
		}
		h.sessions.SetState(userID, session.StateAwaitingContent)
		h.answer(ctx, bot, query.ID)
		return h.reply(ctx, bot, target.chatID, h.msg(localizer, "MsgSendContentPrompt", nil))

	case data == "channels_download":
		h.answer(ctx, bot, query.ID)
		return h.sendChannelListDocument(ctx, bot, target.chatID, nil)

	default:
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgCallbackNotHandled", nil))
		return nil
	}

	h.answer(ctx, bot, query.ID)
	return h.showChannelsPicker(ctx, bot, userID, target)
}

func (h *MessageHandler) handleGroupsCallback(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	localizer := h.defaultLocalizer()
	userID := query.From.ID
	target := targetForQuery(query)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "groups_select_"):
		groupID, err := suffixID(data, "groups_select_")
		if err != nil {
			return err
		}
		h.sessions.Update(userID, func(s *session.Session) {
			s.ActiveGroupID = groupID
			s.GroupChannelsPage = 0
			s.GroupEditMode = ""
		})
		h.answer(ctx, bot, query.ID)
		return h.showGroupChannels(ctx, bot, userID, target)

	case data == "groups_prev":
		h.sessions.Update(userID, func(s *session.Session) { s.GroupsPage-- })
	case data == "groups_next":
		h.sessions.Update(userID, func(s *session.Session) { s.GroupsPage++ })

	case data == "groups_add":
		h.sessions.Update(userID, func(s *session.Session) {
			s.GroupPick = make(map[int64]struct{})
			s.GroupChannelsPage = 0
		})
		h.answer(ctx, bot, query.ID)
		return h.showNewGroupPicker(ctx, bot, userID, target)

	default:
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgCallbackNotHandled", nil))
		return nil
	}

	h.answer(ctx, bot, query.ID)
	return h.showGroupsPicker(ctx, bot, userID, target)
}

func (h *MessageHandler) handleGroupViewCallback(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	localizer := h.defaultLocalizer()
	userID := query.From.ID
	target := targetForQuery(query)
	data := query.Data
	snap := h.sessions.Snapshot(userID)

	switch {
	case strings.HasPrefix(data, "group_channels_toggle_"):
		channelID, err := suffixID(data, "group_channels_toggle_")
		if err != nil {
			return err
		}
		switch snap.GroupEditMode {
		case groupEditModeAdd:
			members, err := h.groupMemberSet(ctx, snap.ActiveGroupID)
			if err != nil {
				return err
			}
			if _, member := members[channelID]; member {
				err = h.groups.RemoveChannelFromGroup(ctx, snap.ActiveGroupID, channelID)
			} else {
				err = h.groups.AddChannelToGroup(ctx, snap.ActiveGroupID, channelID)
			}
			if err != nil {
				return fmt.Errorf("edit group %d membership: %w", snap.ActiveGroupID, err)
			}
		case groupEditModeRemove:
			if err := h.groups.RemoveChannelFromGroup(ctx, snap.ActiveGroupID, channelID); err != nil {
				return fmt.Errorf("edit group %d membership: %w", snap.ActiveGroupID, err)
			}
		default:
			h.sessions.ToggleSelected(userID, channelID)
		}

	case data == "group_channels_prev":
		h.sessions.Update(userID, func(s *session.Session) { s.GroupChannelsPage-- })
	case data == "group_channels_next":
		h.sessions.Update(userID, func(s *session.Session) { s.GroupChannelsPage++ })

	case data == "group_select_all":
		ids, err := h.groupChannelIDs(ctx, snap.ActiveGroupID)
		if err != nil {
			return err
		}
		h.sessions.SetSelection(userID, ids)

	case data == "group_channels_clear":
		h.sessions.ClearSelection(userID)

	case data == "group_send_message":
		if len(h.sessions.Selection(userID)) == 0 {
			h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgNothingSelected", nil))
			return nil
		}
		h.sessions.SetState(userID, session.StateAwaitingContent)
		h.answer(ctx, bot, query.ID)
		return h.reply(ctx, bot, target.chatID, h.msg(localizer, "MsgSendContentPrompt", nil))

	case data == "group_channels_download":
		h.answer(ctx, bot, query.ID)
		return h.sendChannelListDocument(ctx, bot, target.chatID, &snap.ActiveGroupID)

	case data == "group_menu_button":
		h.sessions.Update(userID, func(s *session.Session) {
			s.ActiveGroupID = 0
			s.GroupEditMode = ""
		})
		h.answer(ctx, bot, query.ID)
		return h.showGroupsPicker(ctx, bot, userID, target)

	case data == "group_settings":
		if !h.requireAdminCallback(ctx, bot, query) {
			return nil
		}
		h.sessions.Update(userID, func(s *session.Session) { s.GroupEditMode = "" })
		group, err := h.groups.GetGroup(ctx, snap.ActiveGroupID)
		if err != nil {
			return fmt.Errorf("get group %d: %w", snap.ActiveGroupID, err)
		}
		h.answer(ctx, bot, query.ID)
		return h.renderView(ctx, bot, target, group.GroupName, h.groupSettingsMarkup(localizer))

	case data == "group_channel_add":
		if !h.requireAdminCallback(ctx, bot, query) {
			return nil
		}
		h.sessions.Update(userID, func(s *session.Session) {
			s.GroupEditMode = groupEditModeAdd
			s.GroupChannelsPage = 0
		})

	case data == "group_channel_delete":
		if !h.requireAdminCallback(ctx, bot, query) {
			return nil
		}
		h.sessions.Update(userID, func(s *session.Session) {
			s.GroupEditMode = groupEditModeRemove
			s.GroupChannelsPage = 0
		})

	case data == "group_change_name":
		if !h.requireAdminCallback(ctx, bot, query) {
			return nil
		}
		h.sessions.SetState(userID, session.StateAwaitingGroupRename)
		h.answer(ctx, bot, query.ID)
		return h.reply(ctx, bot, target.chatID, h.msg(localizer, "MsgGroupNamePrompt", nil))

	case data == "group_delete":
		if !h.requireAdminCallback(ctx, bot, query) {
			return nil
		}
		if err := h.groups.DeleteGroup(ctx, snap.ActiveGroupID); err != nil {
			return fmt.Errorf("delete group %d: %w", snap.ActiveGroupID, err)
		}
		h.sessions.Update(userID, func(s *session.Session) {
			s.ActiveGroupID = 0
			s.GroupEditMode = ""
		})
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgGroupDeleted", nil))
		return h.showGroupsPicker(ctx, bot, userID, target)

	default:
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgCallbackNotHandled", nil))
		return nil
	}

	h.answer(ctx, bot, query.ID)
	return h.showGroupChannels(ctx, bot, userID, target)
}

func (h *MessageHandler) handleNewGroupCallback(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	localizer := h.defaultLocalizer()
	userID := query.From.ID
	target := targetForQuery(query)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "group_add_toggle_"):
		channelID, err := suffixID(data, "group_add_toggle_")
		if err != nil {
			return err
		}
		h.sessions.Update(userID, func(s *session.Session) {
			if _, ok := s.GroupPick[channelID]; ok {
				delete(s.GroupPick, channelID)
			} else {
				s.GroupPick[channelID] = struct{}{}
			}
		})

	case data == "new_group_prev":
		h.sessions.Update(userID, func(s *session.Session) { s.GroupChannelsPage-- })
	case data == "new_group_next":
		h.sessions.Update(userID, func(s *session.Session) { s.GroupChannelsPage++ })

	case data == "new_group_select_all":
		ids, err := h.allChannelIDs(ctx)
		if err != nil {
			return err
		}
		h.sessions.Update(userID, func(s *session.Session) {
			s.GroupPick = make(map[int64]struct{}, len(ids))
			for _, id := range ids {
				s.GroupPick[id] = struct{}{}
			}
		})

	case data == "new_group_channels_clear":
		h.sessions.Update(userID, func(s *session.Session) { s.GroupPick = make(map[int64]struct{}) })

	case data == "new_group_save":
		if len(h.sessions.Snapshot(userID).GroupPick) == 0 {
			h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgNothingSelected", nil))
			return nil
		}
		h.sessions.SetState(userID, session.StateAwaitingGroupName)
		h.answer(ctx, bot, query.ID)
		return h.reply(ctx, bot, target.chatID, h.msg(localizer, "MsgGroupNamePrompt", nil))

	default:
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgCallbackNotHandled", nil))
		return nil
	}

	h.answer(ctx, bot, query.ID)
	return h.showNewGroupPicker(ctx, bot, userID, target)
}

func (h *MessageHandler) handlePostsCallback(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	localizer := h.defaultLocalizer()
	userID := query.From.ID
	target := targetForQuery(query)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "posts_channels_toggle_"):
		channelID, err := suffixID(data, "posts_channels_toggle_")
		if err != nil {
			return err
		}
		h.sessions.Update(userID, func(s *session.Session) {
			if _, ok := s.PostsPick[channelID]; ok {
				delete(s.PostsPick, channelID)
			} else {
				s.PostsPick[channelID] = struct{}{}
			}
		})

	case data == "posts_prev":
		h.sessions.Update(userID, func(s *session.Session) { s.PostsPage-- })
	case data == "posts_next":
		h.sessions.Update(userID, func(s *session.Session) { s.PostsPage++ })

	case data == "posts_all":
		ids, err := h.userChannelIDs(ctx, userID)
		if err != nil {
			return err
		}
		h.sessions.Update(userID, func(s *session.Session) {
			s.PostsPick = make(map[int64]struct{}, len(ids))
			for _, id := range ids {
				s.PostsPick[id] = struct{}{}
			}
		})

	case data == "posts_clear":
		h.sessions.Update(userID, func(s *session.Session) { s.PostsPick = make(map[int64]struct{}) })

	case data == "posts_download":
		picked := h.sessions.Snapshot(userID).PostsPick
		if len(picked) == 0 {
			h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgNothingSelected", nil))
			return nil
		}
		h.answer(ctx, bot, query.ID)
		if err := h.sendPostHistory(ctx, bot, target.chatID, picked); err != nil {
			return err
		}
		h.sessions.Update(userID, func(s *session.Session) { s.PostsPick = make(map[int64]struct{}) })
		return nil

	default:
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgCallbackNotHandled", nil))
		return nil
	}

	h.answer(ctx, bot, query.ID)
	return h.showPostsPicker(ctx, bot, userID, target)
}

// sendChannelListDocument exports the channel list (of one group, or of all
// channels when groupID is nil) as a downloadable text file.
func (h *MessageHandler) sendChannelListDocument(ctx context.Context, bot telegoapi.BotAPI, chatID int64, groupID *int64) error {
	var (
		channels []models.Channel
		err      error
	)
	if groupID != nil {
		count, countErr := h.groups.CountGroupChannels(ctx, *groupID)
		if countErr != nil {
			return fmt.Errorf("count group channels: %w", countErr)
		}
		channels, err = h.groups.ListGroupChannels(ctx, *groupID, count, 0)
	} else {
		count, countErr := h.channels.CountChannels(ctx)
		if countErr != nil {
			return fmt.Errorf("count channels: %w", countErr)
		}
		channels, err = h.channels.ListChannels(ctx, count, 0)
	}
	if err != nil {
		return fmt.Errorf("list channels for export: %w", err)
	}

	var b strings.Builder
	for _, channel := range channels {
		fmt.Fprintf(&b, "%s - %s\n", channel.ChannelName, broadcast.NormalizeLink(channel.ChannelLink))
	}
	return broadcast.SendTextDocument(ctx, bot, chatID, "document.txt", b.String())
}

// sendPostHistory exports the sent-post audit log of the picked channels as
// one downloadable text file, with per-channel progress messages.
func (h *MessageHandler) sendPostHistory(ctx context.Context, bot telegoapi.BotAPI, chatID int64, picked map[int64]struct{}) error {
	localizer := h.defaultLocalizer()

	ids := make([]int64, 0, len(picked))
	for id := range picked {
		ids = append(ids, id)
	}

	var b strings.Builder
	for i, channelID := range ids {
		_ = h.reply(ctx, bot, chatID, h.msg(localizer, "MsgDownloadingPosts", map[string]interface{}{
			"Current": i + 1,
			"Total":   len(ids),
		}))

		channel, err := h.channels.GetChannel(ctx, channelID)
		if err != nil {
			return fmt.Errorf("get channel %d: %w", channelID, err)
		}
		posts, err := h.posts.ListPosts(ctx, channelID)
		if err != nil {
			return fmt.Errorf("list posts of channel %d: %w", channelID, err)
		}

		for _, post := range posts {
			b.WriteString(h.msg(localizer, "MsgPostHistoryEntry", map[string]interface{}{
				"Channel": channel.ChannelName,
				"Link":    broadcast.NormalizeLink(channel.ChannelLink),
				"Date":    post.CreatedAt.Format("2006-01-02 15:04"),
				"Text":    post.PostText,
			}))
		}
	}

	return broadcast.SendTextDocument(ctx, bot, chatID, "posts.txt", b.String())
}
