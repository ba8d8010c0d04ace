package handlers

import (
	"context"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"multipost-bot/internal/database/models"
	"multipost-bot/internal/locales"
	"multipost-bot/pkg/telegoapi"
)

func (h *MessageHandler) defaultLocalizer() *i18n.Localizer {
	return locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
}

func (h *MessageHandler) msg(localizer *i18n.Localizer, id string, data map[string]interface{}) string {
	return locales.GetMessage(localizer, id, data, nil)
}

// reply sends a plain text message to the chat, logging send failures.
func (h *MessageHandler) reply(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	_, err := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	if err != nil {
		log.Printf("[Handlers Chat:%d] Failed to send message: %v", chatID, err)
	}
	return err
}

// requireRole checks the requester against the allowed roles and sends the
// denial message itself. The boolean reports whether to proceed.
func (h *MessageHandler) requireRole(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, roles ...models.Role) bool {
	allowed, err := h.gate.Authorize(ctx, message.From.ID, roles...)
	if err != nil {
		log.Printf("[Handlers User:%d] Role check failed: %v", message.From.ID, err)
	}
	if !allowed {
		localizer := h.defaultLocalizer()
		_ = h.reply(ctx, bot, message.Chat.ID, h.msg(localizer, "MsgNoAccess", nil))
	}
	return allowed
}

// requireRoleCallback is requireRole for callback queries: denial is an
// alert on the query instead of a chat message.
func (h *MessageHandler) requireRoleCallback(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, roles ...models.Role) bool {
	allowed, err := h.gate.Authorize(ctx, query.From.ID, roles...)
	if err != nil {
		log.Printf("[Handlers User:%d] Role check failed: %v", query.From.ID, err)
	}
	if !allowed {
		localizer := h.defaultLocalizer()
		_ = bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            h.msg(localizer, "MsgNoAccess", nil),
			ShowAlert:       true,
		})
	}
	return allowed
}

// requireAdminCallback gates destructive picker buttons to administrators.
func (h *MessageHandler) requireAdminCallback(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) bool {
	allowed, err := h.gate.Authorize(ctx, query.From.ID, models.RoleAdmin)
	if err != nil {
		log.Printf("[Handlers User:%d] Role check failed: %v", query.From.ID, err)
	}
	if !allowed {
		localizer := h.defaultLocalizer()
		h.answerAlert(ctx, bot, query.ID, h.msg(localizer, "MsgAdminOnly", nil))
	}
	return allowed
}

// viewTarget describes where a picker view goes: a fresh message or an
// edit of the message carrying the pressed keyboard.
type viewTarget struct {
	chatID        int64
	editMessageID int
}

func targetForMessage(message telego.Message) viewTarget {
	return viewTarget{chatID: message.Chat.ID}
}

func targetForQuery(query telego.CallbackQuery) viewTarget {
	if query.Message != nil {
		return viewTarget{
			chatID:        query.Message.GetChat().ID,
			editMessageID: query.Message.GetMessageID(),
		}
	}
	return viewTarget{chatID: query.From.ID}
}

// renderView sends or edits the picker message depending on the target.
func (h *MessageHandler) renderView(ctx context.Context, bot telegoapi.BotAPI, target viewTarget, text string, markup *telego.InlineKeyboardMarkup) error {
	if target.editMessageID != 0 {
		_, err := bot.EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(target.chatID),
			MessageID:   target.editMessageID,
			Text:        text,
			ReplyMarkup: markup,
		})
		return err
	}

	params := tu.Message(tu.ID(target.chatID), text)
	params.ReplyMarkup = markup
	_, err := bot.SendMessage(ctx, params)
	return err
}

// answer acknowledges a callback query without a popup.
func (h *MessageHandler) answer(ctx context.Context, bot telegoapi.BotAPI, queryID string) {
	if err := bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: queryID}); err != nil {
		log.Printf("[Handlers] Failed to answer callback query %s: %v", queryID, err)
	}
}

// answerAlert acknowledges a callback query with an alert popup.
func (h *MessageHandler) answerAlert(ctx context.Context, bot telegoapi.BotAPI, queryID, text string) {
	if err := bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       true,
	}); err != nil {
		log.Printf("[Handlers] Failed to answer callback query %s: %v", queryID, err)
	}
}
