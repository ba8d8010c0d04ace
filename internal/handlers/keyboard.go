package handlers

import (
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"multipost-bot/internal/database/models"
)

// checkboxLabel prefixes selected entries with a tick so pickers read as
// checklists.
func checkboxLabel(name string, selected bool) string {
	if selected {
		return "✅ " + name
	}
	return name
}

// lastPage returns the highest valid zero-based page index for total entries.
func (h *MessageHandler) lastPage(total int) int {
	if total <= 0 {
		return 0
	}
	return (total - 1) / h.perPage
}

// channelRows renders one already-paged slice of channels as one row per
// channel: the toggle button plus, when the channel has a link, an open-link
// button.
func (h *MessageHandler) channelRows(localizer *i18n.Localizer, channels []models.Channel, selected map[int64]struct{}, togglePrefix string) [][]telego.InlineKeyboardButton {
	linkLabel := h.msg(localizer, "BtnOpenLink", nil)
	rows := make([][]telego.InlineKeyboardButton, 0, len(channels)+4)
	for _, channel := range channels {
		_, picked := selected[channel.ChannelID]
		row := []telego.InlineKeyboardButton{
			tu.InlineKeyboardButton(checkboxLabel(channel.ChannelName, picked)).
				WithCallbackData(fmt.Sprintf("%s%d", togglePrefix, channel.ChannelID)),
		}
		if channel.ChannelLink != "" {
			row = append(row, tu.InlineKeyboardButton(linkLabel).WithURL(channel.ChannelLink))
		}
		rows = append(rows, row)
	}
	return rows
}

// navRow renders the pagination row, omitting arrows that lead nowhere.
func (h *MessageHandler) navRow(localizer *i18n.Localizer, total, page int, prevData, nextData string) []telego.InlineKeyboardButton {
	var row []telego.InlineKeyboardButton
	if page > 0 {
		row = append(row, tu.InlineKeyboardButton(h.msg(localizer, "BtnPrevPage", nil)).WithCallbackData(prevData))
	}
	if (page+1)*h.perPage < total {
		row = append(row, tu.InlineKeyboardButton(h.msg(localizer, "BtnNextPage", nil)).WithCallbackData(nextData))
	}
	return row
}

// channelsPickerMarkup is the /channels picker: toggle the broadcast target
// set, manage channels, and fire the send flow.
func (h *MessageHandler) channelsPickerMarkup(localizer *i18n.Localizer, channels []models.Channel, selected map[int64]struct{}, total, page int) *telego.InlineKeyboardMarkup {
	rows := h.channelRows(localizer, channels, selected, "channels_toggle_")

	if nav := h.navRow(localizer, total, page, "channels_prev", "channels_next"); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows,
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnSelectAll", nil)).WithCallbackData("channels_all"),
			tu.InlineKeyboardButton(h.msg(localizer, "BtnClearSelection", nil)).WithCallbackData("channels_clear"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnAddChannel", nil)).WithCallbackData("channels_add"),
			tu.InlineKeyboardButton(h.msg(localizer, "BtnDeleteChannel", nil)).WithCallbackData("channels_delete"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnSend", nil)).WithCallbackData("channels_send"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnDownloadChannels", nil)).WithCallbackData("channels_download"),
		),
	)

	return tu.InlineKeyboard(rows...)
}

// groupsPickerMarkup is the /groups list: open a group or start composing a
// new one.
func (h *MessageHandler) groupsPickerMarkup(localizer *i18n.Localizer, groups []models.Group, total, page int) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(groups)+2)
	for _, group := range groups {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(group.GroupName).
				WithCallbackData(fmt.Sprintf("groups_select_%d", group.ID)),
		))
	}

	if nav := h.navRow(localizer, total, page, "groups_prev", "groups_next"); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(h.msg(localizer, "BtnCreateGroup", nil)).WithCallbackData("groups_add"),
	))

	return tu.InlineKeyboard(rows...)
}

// groupChannelsMarkup is the opened-group view: toggle the group's channels
// as broadcast targets, send, or enter the settings menu.
func (h *MessageHandler) groupChannelsMarkup(localizer *i18n.Localizer, channels []models.Channel, selected map[int64]struct{}, total, page int) *telego.InlineKeyboardMarkup {
	rows := h.channelRows(localizer, channels, selected, "group_channels_toggle_")

	if nav := h.navRow(localizer, total, page, "group_channels_prev", "group_channels_next"); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows,
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnSelectAll", nil)).WithCallbackData("group_select_all"),
			tu.InlineKeyboardButton(h.msg(localizer, "BtnClearSelection", nil)).WithCallbackData("group_channels_clear"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnSend", nil)).WithCallbackData("group_send_message"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnGroupSettings", nil)).WithCallbackData("group_settings"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnDownloadChannels", nil)).WithCallbackData("group_channels_download"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnMainMenu", nil)).WithCallbackData("group_menu_button"),
		),
	)

	return tu.InlineKeyboard(rows...)
}

// groupEditMarkup is the membership edit view of a group: toggles mutate
// the membership directly, no separate save step.
func (h *MessageHandler) groupEditMarkup(localizer *i18n.Localizer, channels []models.Channel, ticked map[int64]struct{}, total, page int) *telego.InlineKeyboardMarkup {
	rows := h.channelRows(localizer, channels, ticked, "group_channels_toggle_")

	if nav := h.navRow(localizer, total, page, "group_channels_prev", "group_channels_next"); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows,
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnGroupSettings", nil)).WithCallbackData("group_settings"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnMainMenu", nil)).WithCallbackData("group_menu_button"),
		),
	)

	return tu.InlineKeyboard(rows...)
}

// groupSettingsMarkup is the per-group management menu.
func (h *MessageHandler) groupSettingsMarkup(localizer *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnGroupAddChannels", nil)).WithCallbackData("group_channel_add"),
			tu.InlineKeyboardButton(h.msg(localizer, "BtnGroupRemoveChannels", nil)).WithCallbackData("group_channel_delete"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnGroupRename", nil)).WithCallbackData("group_change_name"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnGroupDelete", nil)).WithCallbackData("group_delete"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnMainMenu", nil)).WithCallbackData("group_menu_button"),
		),
	)
}

// newGroupPickerMarkup composes a new group: pick the member channels, then
// save.
func (h *MessageHandler) newGroupPickerMarkup(localizer *i18n.Localizer, channels []models.Channel, picked map[int64]struct{}, total, page int) *telego.InlineKeyboardMarkup {
	rows := h.channelRows(localizer, channels, picked, "group_add_toggle_")

	if nav := h.navRow(localizer, total, page, "new_group_prev", "new_group_next"); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows,
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnSelectAll", nil)).WithCallbackData("new_group_select_all"),
			tu.InlineKeyboardButton(h.msg(localizer, "BtnClearSelection", nil)).WithCallbackData("new_group_channels_clear"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnGroupSave", nil)).WithCallbackData("new_group_save"),
		),
	)

	return tu.InlineKeyboard(rows...)
}

// postsPickerMarkup picks the channels whose sent-post history to export.
func (h *MessageHandler) postsPickerMarkup(localizer *i18n.Localizer, channels []models.Channel, picked map[int64]struct{}, total, page int) *telego.InlineKeyboardMarkup {
	rows := h.channelRows(localizer, channels, picked, "posts_channels_toggle_")

	if nav := h.navRow(localizer, total, page, "posts_prev", "posts_next"); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows,
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnSelectAll", nil)).WithCallbackData("posts_all"),
			tu.InlineKeyboardButton(h.msg(localizer, "BtnClearSelection", nil)).WithCallbackData("posts_clear"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(h.msg(localizer, "BtnDownloadPosts", nil)).WithCallbackData("posts_download"),
		),
	)

	return tu.InlineKeyboard(rows...)
}
