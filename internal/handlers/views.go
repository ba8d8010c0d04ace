package handlers

import (
	"context"
	"fmt"

	"multipost-bot/internal/database/models"
	"multipost-bot/internal/session"
	"multipost-bot/pkg/telegoapi"
)

// groupEditModeAdd and groupEditModeRemove select what a group-channel
// toggle mutates: the group membership instead of the broadcast target set.
const (
	groupEditModeAdd    = "add"
	groupEditModeRemove = "remove"
)

// showChannelsPicker renders the /channels picker page for the user.
func (h *MessageHandler) showChannelsPicker(ctx context.Context, bot telegoapi.BotAPI, userID int64, target viewTarget) error {
	localizer := h.defaultLocalizer()
	snap := h.sessions.Snapshot(userID)

	total, err := h.channels.CountChannels(ctx)
	if err != nil {
		return fmt.Errorf("count channels: %w", err)
	}
	page := h.clampPage(userID, snap.ChannelsPage, total, func(s *session.Session, p int) { s.ChannelsPage = p })

	channels, err := h.channels.ListChannels(ctx, h.perPage, page*h.perPage)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}

	title := h.msg(localizer, "MsgChannelsPickerTitle", map[string]interface{}{"Count": total})
	if total == 0 {
		title = h.msg(localizer, "MsgNoChannels", nil)
	}
	return h.renderView(ctx, bot, target, title, h.channelsPickerMarkup(localizer, channels, snap.Selected, total, page))
}

// showGroupsPicker renders the /groups list page for the user.
func (h *MessageHandler) showGroupsPicker(ctx context.Context, bot telegoapi.BotAPI, userID int64, target viewTarget) error {
	localizer := h.defaultLocalizer()
	snap := h.sessions.Snapshot(userID)

	total, err := h.groups.CountGroups(ctx)
	if err != nil {
		return fmt.Errorf("count groups: %w", err)
	}
	page := h.clampPage(userID, snap.GroupsPage, total, func(s *session.Session, p int) { s.GroupsPage = p })

	groups, err := h.groups.ListGroups(ctx, h.perPage, page*h.perPage)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	title := h.msg(localizer, "MsgGroupsPickerTitle", map[string]interface{}{"Count": total})
	return h.renderView(ctx, bot, target, title, h.groupsPickerMarkup(localizer, groups, total, page))
}

// showGroupChannels renders the opened-group view. In membership edit mode
// the list and the tick semantics change: "add" pages over all channels
// with current members ticked, "remove" pages over the members only.
func (h *MessageHandler) showGroupChannels(ctx context.Context, bot telegoapi.BotAPI, userID int64, target viewTarget) error {
	localizer := h.defaultLocalizer()
	snap := h.sessions.Snapshot(userID)

	group, err := h.groups.GetGroup(ctx, snap.ActiveGroupID)
	if err != nil {
		return fmt.Errorf("get group %d: %w", snap.ActiveGroupID, err)
	}

	var (
		total    int
		channels []models.Channel
		ticked   map[int64]struct{}
	)

	switch snap.GroupEditMode {
	case groupEditModeAdd:
		total, err = h.channels.CountChannels(ctx)
		if err != nil {
			return fmt.Errorf("count channels: %w", err)
		}
		page := h.clampPage(userID, snap.GroupChannelsPage, total, func(s *session.Session, p int) { s.GroupChannelsPage = p })

		channels, err = h.channels.ListChannels(ctx, h.perPage, page*h.perPage)
		if err != nil {
			return fmt.Errorf("list channels: %w", err)
		}
		ticked, err = h.groupMemberSet(ctx, group.ID)
		if err != nil {
			return err
		}

		title := h.msg(localizer, "MsgGroupChannelsTitle", map[string]interface{}{"Group": group.GroupName, "Count": total})
		return h.renderView(ctx, bot, target, title, h.groupEditMarkup(localizer, channels, ticked, total, page))

	case groupEditModeRemove:
		total, err = h.groups.CountGroupChannels(ctx, group.ID)
		if err != nil {
			return fmt.Errorf("count group channels: %w", err)
		}
		page := h.clampPage(userID, snap.GroupChannelsPage, total, func(s *session.Session, p int) { s.GroupChannelsPage = p })

		channels, err = h.groups.ListGroupChannels(ctx, group.ID, h.perPage, page*h.perPage)
		if err != nil {
			return fmt.Errorf("list group channels: %w", err)
		}

		title := h.msg(localizer, "MsgGroupChannelsTitle", map[string]interface{}{"Group": group.GroupName, "Count": total})
		return h.renderView(ctx, bot, target, title, h.groupEditMarkup(localizer, channels, nil, total, page))

	default:
		total, err = h.groups.CountGroupChannels(ctx, group.ID)
		if err != nil {
			return fmt.Errorf("count group channels: %w", err)
		}
		page := h.clampPage(userID, snap.GroupChannelsPage, total, func(s *session.Session, p int) { s.GroupChannelsPage = p })

		channels, err = h.groups.ListGroupChannels(ctx, group.ID, h.perPage, page*h.perPage)
		if err != nil {
			return fmt.Errorf("list group channels: %w", err)
		}

		title := h.msg(localizer, "MsgGroupChannelsTitle", map[string]interface{}{"Group": group.GroupName, "Count": total})
		if total == 0 {
			title = h.msg(localizer, "MsgGroupEmpty", nil)
		}
		return h.renderView(ctx, bot, target, title, h.groupChannelsMarkup(localizer, channels, snap.Selected, total, page))
	}
}

// showNewGroupPicker renders the new-group composition picker.
func (h *MessageHandler) showNewGroupPicker(ctx context.Context, bot telegoapi.BotAPI, userID int64, target viewTarget) error {
	localizer := h.defaultLocalizer()
	snap := h.sessions.Snapshot(userID)

	total, err := h.channels.CountChannels(ctx)
	if err != nil {
		return fmt.Errorf("count channels: %w", err)
	}
	page := h.clampPage(userID, snap.GroupChannelsPage, total, func(s *session.Session, p int) { s.GroupChannelsPage = p })

	channels, err := h.channels.ListChannels(ctx, h.perPage, page*h.perPage)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}

	title := h.msg(localizer, "MsgNewGroupPickerTitle", map[string]interface{}{"Count": total})
	return h.renderView(ctx, bot, target, title, h.newGroupPickerMarkup(localizer, channels, snap.GroupPick, total, page))
}

// showPostsPicker renders the sent-post export picker. Unlike the broadcast
// pickers it pages over the requester's own channels only.
func (h *MessageHandler) showPostsPicker(ctx context.Context, bot telegoapi.BotAPI, userID int64, target viewTarget) error {
	localizer := h.defaultLocalizer()
	snap := h.sessions.Snapshot(userID)

	total, err := h.channels.CountUserChannels(ctx, userID)
	if err != nil {
		return fmt.Errorf("count user channels: %w", err)
	}
	page := h.clampPage(userID, snap.PostsPage, total, func(s *session.Session, p int) { s.PostsPage = p })

	channels, err := h.channels.ListUserChannels(ctx, userID, h.perPage, page*h.perPage)
	if err != nil {
		return fmt.Errorf("list user channels: %w", err)
	}

	title := h.msg(localizer, "MsgPostsPickerTitle", map[string]interface{}{"Count": total})
	return h.renderView(ctx, bot, target, title, h.postsPickerMarkup(localizer, channels, snap.PostsPick, total, page))
}

// clampPage keeps a session page cursor in range after the underlying list
// shrank, writing the corrected value back through set.
func (h *MessageHandler) clampPage(userID int64, page, total int, set func(s *session.Session, p int)) int {
	last := h.lastPage(total)
	if page < 0 {
		page = 0
	}
	if page > last {
		page = last
	}
	h.sessions.Update(userID, func(s *session.Session) { set(s, page) })
	return page
}

// groupMemberSet loads the full membership of a group as a set.
func (h *MessageHandler) groupMemberSet(ctx context.Context, groupID int64) (map[int64]struct{}, error) {
	count, err := h.groups.CountGroupChannels(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("count group channels: %w", err)
	}
	if count == 0 {
		return map[int64]struct{}{}, nil
	}

	members, err := h.groups.ListGroupChannels(ctx, groupID, count, 0)
	if err != nil {
		return nil, fmt.Errorf("list group channels: %w", err)
	}
	set := make(map[int64]struct{}, len(members))
	for _, channel := range members {
		set[channel.ChannelID] = struct{}{}
	}
	return set, nil
}

// allChannelIDs loads every channel ID, for select-all actions.
func (h *MessageHandler) allChannelIDs(ctx context.Context) ([]int64, error) {
	count, err := h.channels.CountChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("count channels: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	channels, err := h.channels.ListChannels(ctx, count, 0)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	ids := make([]int64, 0, len(channels))
	for _, channel := range channels {
		ids = append(ids, channel.ChannelID)
	}
	return ids, nil
}

// userChannelIDs loads every channel ID owned by the user.
func (h *MessageHandler) userChannelIDs(ctx context.Context, userID int64) ([]int64, error) {
	count, err := h.channels.CountUserChannels(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count user channels: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	channels, err := h.channels.ListUserChannels(ctx, userID, count, 0)
	if err != nil {
		return nil, fmt.Errorf("list user channels: %w", err)
	}
	ids := make([]int64, 0, len(channels))
	for _, channel := range channels {
		ids = append(ids, channel.ChannelID)
	}
	return ids, nil
}

// groupChannelIDs loads every member channel ID of a group.
func (h *MessageHandler) groupChannelIDs(ctx context.Context, groupID int64) ([]int64, error) {
	set, err := h.groupMemberSet(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}
