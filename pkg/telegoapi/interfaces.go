package telegoapi

import (
	"context"

	"github.com/mymmrac/telego"
)

// BotAPI defines the transport surface used by the broadcast engine and the
// handlers. It allows using both the real telego.Bot and mocks in tests.
type BotAPI interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	ForwardMessage(ctx context.Context, params *telego.ForwardMessageParams) (*telego.Message, error)
	CopyMessage(ctx context.Context, params *telego.CopyMessageParams) (*telego.MessageID, error)
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
	EditMessageCaption(ctx context.Context, params *telego.EditMessageCaptionParams) (*telego.Message, error)
	SendMediaGroup(ctx context.Context, params *telego.SendMediaGroupParams) ([]telego.Message, error)
	SendDocument(ctx context.Context, params *telego.SendDocumentParams) (*telego.Message, error)

	// Chat inspection, used by the channel-add flow and link resolution.
	GetChat(ctx context.Context, params *telego.GetChatParams) (*telego.ChatFullInfo, error)
	GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error)
	GetMe(ctx context.Context) (*telego.User, error)

	// Inline keyboard plumbing.
	EditMessageReplyMarkup(ctx context.Context, params *telego.EditMessageReplyMarkupParams) (*telego.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error
	SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error
}
