package broadcast

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tu "github.com/mymmrac/telego/telegoutil"

	"multipost-bot/pkg/telegoapi"
)

// deliveryReport renders the downloadable per-channel delivery report, one
// "<channel name> - <permalink>" line per delivered destination.
func deliveryReport(sent []delivered) string {
	var b strings.Builder
	for _, d := range sent {
		fmt.Fprintf(&b, "%s - %s\n", d.channelName, d.messageLink)
	}
	return b.String()
}

// SendTextDocument offers a UTF-8 text artifact to the chat as a
// downloadable file with the given name.
func SendTextDocument(ctx context.Context, bot telegoapi.BotAPI, chatID int64, name, text string) error {
	document := tu.Document(
		tu.ID(chatID),
		tu.File(tu.NameReader(bytes.NewReader([]byte(text)), name)),
	)

	if _, err := bot.SendDocument(ctx, document); err != nil {
		return fmt.Errorf("send document %q: %w", name, err)
	}
	return nil
}
