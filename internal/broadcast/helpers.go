package broadcast

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// NormalizeLink reduces a stored channel link, invite link or bare username
// to the canonical https://t.me/<slug> form.
func NormalizeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	slug := raw
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		slug = raw[i+1:]
	}
	slug = strings.TrimPrefix(slug, "@")
	if slug == "" {
		return ""
	}

	return "https://t.me/" + slug
}

// messageLink builds a permalink to a delivered channel message. Private
// channels use the /c/<internal id> form.
func messageLink(chat telego.Chat, messageID int) string {
	if chat.Username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", chat.Username, messageID)
	}

	internal := chat.ID
	if internal < 0 {
		internal = -internal
	}
	internal -= 1000000000000
	if internal > 0 {
		return fmt.Sprintf("https://t.me/c/%d/%d", internal, messageID)
	}

	return ""
}

// ForwardedChannel returns the origin chat if the message was forwarded
// from a channel, nil otherwise.
func ForwardedChannel(message telego.Message) *telego.Chat {
	origin, ok := message.ForwardOrigin.(*telego.MessageOriginChannel)
	if !ok {
		return nil
	}
	return &origin.Chat
}

// hasAttachment reports whether the message carries any supported media.
func hasAttachment(message telego.Message) bool {
	return len(message.Photo) > 0 ||
		message.Video != nil ||
		message.Document != nil ||
		message.Audio != nil ||
		message.Voice != nil
}

// albumItemsFromMessage extracts the attachments of one physical album
// message as input media, keyed by file ID for content-identity dedup.
// Voice notes are republished as audio, the closest album-capable type.
func albumItemsFromMessage(message telego.Message) []albumItem {
	items := make([]albumItem, 0, 1)

	if len(message.Photo) > 0 {
		fileID := message.Photo[len(message.Photo)-1].FileID
		items = append(items, albumItem{
			fileID: fileID,
			media:  tu.MediaPhoto(telego.InputFile{FileID: fileID}),
		})
	}
	if message.Video != nil {
		items = append(items, albumItem{
			fileID: message.Video.FileID,
			media:  tu.MediaVideo(telego.InputFile{FileID: message.Video.FileID}),
		})
	}
	if message.Document != nil {
		items = append(items, albumItem{
			fileID: message.Document.FileID,
			media:  tu.MediaDocument(telego.InputFile{FileID: message.Document.FileID}),
		})
	}
	if message.Audio != nil {
		items = append(items, albumItem{
			fileID: message.Audio.FileID,
			media:  tu.MediaAudio(telego.InputFile{FileID: message.Audio.FileID}),
		})
	}
	if message.Voice != nil {
		items = append(items, albumItem{
			fileID: message.Voice.FileID,
			media:  tu.MediaAudio(telego.InputFile{FileID: message.Voice.FileID}),
		})
	}

	return items
}

// dedupeItems keeps the first occurrence of every file ID, preserving
// arrival order.
func dedupeItems(items []albumItem) []telego.InputMedia {
	seen := make(map[string]struct{}, len(items))
	media := make([]telego.InputMedia, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.fileID]; ok {
			continue
		}
		seen[item.fileID] = struct{}{}
		media = append(media, item.media)
	}
	return media
}
