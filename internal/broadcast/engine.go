// Package broadcast implements the multi-channel fan-out engine: it takes
// one user-composed message and republishes it, with header/footer
// branding, to every selected destination channel, coalescing album
// attachments that arrive as separate updates and recording a per-channel
// delivery log.
package broadcast

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"multipost-bot/internal/database"
	"multipost-bot/internal/database/models"
	"multipost-bot/internal/locales"
	"multipost-bot/pkg/telegoapi"
)

// Engine fans one message out to N destination channels. Failures are
// isolated per destination: one bad channel never blocks the rest. The one
// fatal condition is a selected channel missing from the store, which means
// the selection and the store have diverged.
type Engine struct {
	bot      telegoapi.BotAPI
	channels database.ChannelRepository
	posts    database.PostRepository

	albums      *albumRegistry
	quietPeriod time.Duration

	debug bool
}

// NewEngine creates a broadcast engine. quietPeriod <= 0 selects
// DefaultQuietPeriod.
func NewEngine(bot telegoapi.BotAPI, channels database.ChannelRepository, posts database.PostRepository, quietPeriod time.Duration, debug bool) (*Engine, error) {
	if bot == nil {
		return nil, fmt.Errorf("bot instance cannot be nil")
	}
	if channels == nil {
		return nil, fmt.Errorf("channel repository cannot be nil")
	}
	if posts == nil {
		return nil, fmt.Errorf("post repository cannot be nil")
	}
	if quietPeriod <= 0 {
		quietPeriod = DefaultQuietPeriod
	}

	return &Engine{
		bot:         bot,
		channels:    channels,
		posts:       posts,
		albums:      newAlbumRegistry(),
		quietPeriod: quietPeriod,
		debug:       debug,
	}, nil
}

// delivered records one successful per-channel delivery within an attempt.
type delivered struct {
	channelID   int64
	channelName string
	messageLink string
	text        string
}

// Broadcast republishes message to every channel in channelIDs. sendAt
// optionally delays album flushes until the given time.
//
// Empty selections abort before any transport call. A selected channel
// missing from the store aborts the whole attempt. Everything else is
// per-channel best effort.
func (e *Engine) Broadcast(ctx context.Context, requester telego.User, message telego.Message, channelIDs []int64, sendAt *time.Time) error {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	chatID := message.Chat.ID

	if len(channelIDs) == 0 {
		msg := locales.GetMessage(localizer, "MsgNothingSelected", nil, nil)
		_, _ = e.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), msg))
		return nil
	}

	log.Printf("[Broadcast User:%d] Sending message %d to %d channel(s)", requester.ID, message.MessageID, len(channelIDs))

	var sent []delivered
	albumDeferred := false

	for _, channelID := range channelIDs {
		channel, err := e.channels.GetChannel(ctx, channelID)
		if err != nil {
			// The selection references a channel that is gone: the store
			// and the conversation state have diverged. Fatal for the
			// whole attempt.
			log.Printf("[Broadcast User:%d Channel:%d] Channel lookup failed: %v", requester.ID, channelID, err)
			sentry.CaptureException(fmt.Errorf("broadcast channel %d lookup: %w", channelID, err))
			msg := locales.GetMessage(localizer, "MsgBroadcastAborted", nil, nil)
			_, _ = e.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), msg))
			return fmt.Errorf("selected channel %d not found: %w", channelID, err)
		}

		result, deferred, err := e.dispatchToChannel(ctx, localizer, requester, message, channel, sendAt)
		if err != nil {
			log.Printf("[Broadcast User:%d Channel:%d] Delivery failed: %v", requester.ID, channelID, err)
			sentry.CaptureException(fmt.Errorf("broadcast to channel %d: %w", channelID, err))
			failMsg := locales.GetMessage(localizer, "MsgSendFailed", map[string]interface{}{
				"Channel": channel.ChannelName,
			}, nil)
			_, _ = e.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), failMsg))
			continue
		}
		if deferred {
			albumDeferred = true
			continue
		}
		sent = append(sent, *result)
	}

	doneMsg := locales.GetMessage(localizer, "MsgBroadcastDone", nil, nil)
	_, _ = e.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), doneMsg))

	for _, d := range sent {
		e.savePost(ctx, d, message.MessageID, requester.ID)
	}

	// Album destinations report separately once their group flushes.
	if !albumDeferred {
		if err := SendTextDocument(ctx, e.bot, chatID, "posts.txt", deliveryReport(sent)); err != nil {
			log.Printf("[Broadcast User:%d] Failed to send delivery report: %v", requester.ID, err)
		}
	}

	return nil
}

// dispatchToChannel delivers one message to one destination channel. It
// returns the delivery record, or deferred=true when the message is part
// of an album and was parked in the registry for the coalescing wait.
func (e *Engine) dispatchToChannel(ctx context.Context, localizer *i18n.Localizer, requester telego.User, message telego.Message, channel *models.Channel, sendAt *time.Time) (*delivered, bool, error) {
	link, err := e.channelLink(ctx, channel)
	if err != nil {
		return nil, false, err
	}

	header := locales.GetMessage(localizer, "MsgHeaderForwardedFrom", map[string]interface{}{
		"Name": channel.ChannelName,
		"Link": link,
	}, nil)
	footer := locales.GetMessage(localizer, "MsgFooterSubscribe", map[string]interface{}{
		"Name": channel.ChannelName,
		"Link": link,
	}, nil)

	if origin := ForwardedChannel(message); origin != nil {
		originLink := NormalizeLink(origin.Username)
		if originLink == "" {
			if chat, err := e.bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.ID(origin.ID)}); err == nil {
				originLink = NormalizeLink(chat.InviteLink)
			}
		}
		header = locales.GetMessage(localizer, "MsgHeaderForwardedFrom", map[string]interface{}{
			"Name": origin.Title,
			"Link": originLink,
		}, nil)

		// A bare forwarded channel post keeps its original face: forward
		// verbatim, and only fall back to the re-send path on transport
		// failure.
		if message.Text == "" && message.Caption == "" && message.MediaGroupID == "" {
			msg, err := e.bot.ForwardMessage(ctx, &telego.ForwardMessageParams{
				ChatID:     tu.ID(channel.ChannelID),
				FromChatID: tu.ID(message.Chat.ID),
				MessageID:  message.MessageID,
			})
			if err == nil {
				if e.debug {
					log.Printf("[Broadcast User:%d Channel:%d] Forwarded verbatim", requester.ID, channel.ChannelID)
				}
				return &delivered{
					channelID:   channel.ChannelID,
					channelName: channel.ChannelName,
					messageLink: messageLink(msg.Chat, msg.MessageID),
					text:        message.Text + message.Caption,
				}, false, nil
			}
			log.Printf("[Broadcast User:%d Channel:%d] Forward failed, falling back to copy: %v", requester.ID, channel.ChannelID, err)
		}
	}

	switch {
	case message.MediaGroupID != "":
		deferred := e.registerAlbumPart(ctx, requester, message, channel, link, header, sendAt)
		return nil, deferred, nil

	case message.Text != "":
		return e.copyWithText(ctx, message, channel, header, footer)

	case hasAttachment(message) || message.Caption != "":
		return e.copyWithCaption(ctx, message, channel, header, footer)

	default:
		return nil, false, fmt.Errorf("message %d has no sendable content", message.MessageID)
	}
}

// copyWithText copies a plain text message and splices in the branding.
func (e *Engine) copyWithText(ctx context.Context, message telego.Message, channel *models.Channel, header, footer string) (*delivered, bool, error) {
	copied, err := e.bot.CopyMessage(ctx, &telego.CopyMessageParams{
		ChatID:     tu.ID(channel.ChannelID),
		FromChatID: tu.ID(message.Chat.ID),
		MessageID:  message.MessageID,
		ParseMode:  telego.ModeMarkdown,
	})
	if err != nil {
		return nil, false, fmt.Errorf("copy message: %w", err)
	}

	edited, err := e.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    tu.ID(channel.ChannelID),
		MessageID: copied.MessageID,
		Text:      header + message.Text + footer,
		ParseMode: telego.ModeMarkdown,
	})
	if err != nil {
		return nil, false, fmt.Errorf("edit message text: %w", err)
	}

	return &delivered{
		channelID:   channel.ChannelID,
		channelName: channel.ChannelName,
		messageLink: messageLink(edited.Chat, edited.MessageID),
		text:        message.Text,
	}, false, nil
}

// copyWithCaption copies a single-attachment message and splices the
// branding into its caption.
func (e *Engine) copyWithCaption(ctx context.Context, message telego.Message, channel *models.Channel, header, footer string) (*delivered, bool, error) {
	copied, err := e.bot.CopyMessage(ctx, &telego.CopyMessageParams{
		ChatID:     tu.ID(channel.ChannelID),
		FromChatID: tu.ID(message.Chat.ID),
		MessageID:  message.MessageID,
		ParseMode:  telego.ModeMarkdown,
	})
	if err != nil {
		return nil, false, fmt.Errorf("copy message: %w", err)
	}

	edited, err := e.bot.EditMessageCaption(ctx, &telego.EditMessageCaptionParams{
		ChatID:    tu.ID(channel.ChannelID),
		MessageID: copied.MessageID,
		Caption:   header + message.Caption + footer,
		ParseMode: telego.ModeMarkdown,
	})
	if err != nil {
		return nil, false, fmt.Errorf("edit message caption: %w", err)
	}

	return &delivered{
		channelID:   channel.ChannelID,
		channelName: channel.ChannelName,
		messageLink: messageLink(edited.Chat, edited.MessageID),
		text:        message.Caption,
	}, false, nil
}

// registerAlbumPart parks an album message in the registry for this
// destination. The first destination to register an album key owns the
// coalescing wait; everyone else piggybacks on it.
func (e *Engine) registerAlbumPart(ctx context.Context, requester telego.User, message telego.Message, channel *models.Channel, link, header string, sendAt *time.Time) bool {
	dest := albumDestination{
		channelID: channel.ChannelID,
		name:      channel.ChannelName,
		link:      link,
	}

	created := e.albums.register(
		message.MediaGroupID,
		dest,
		albumItemsFromMessage(message),
		header+message.Caption,
		requester.ID,
		message.Chat.ID,
		message.MessageID,
		sendAt,
	)
	if created {
		log.Printf("[Album Group:%s User:%d] First registration, scheduling coalescing wait (%v)", message.MediaGroupID, requester.ID, e.quietPeriod)
		// Detached from the handler's context on purpose: the wait keeps
		// running after the handler returns and ends only with the process.
		go e.watchAlbum(context.Background(), message.MediaGroupID)
	}

	return true
}

// AppendAlbumPart feeds a later physical update of an in-flight album into
// the registry. It reports whether the update belonged to a pending album.
func (e *Engine) AppendAlbumPart(message telego.Message) bool {
	if message.MediaGroupID == "" {
		return false
	}

	items := albumItemsFromMessage(message)
	if len(items) == 0 {
		return false
	}

	if !e.albums.appendParts(message.MediaGroupID, items) {
		return false
	}

	if e.debug {
		log.Printf("[Album Group:%s] Collected %d more attachment(s)", message.MediaGroupID, len(items))
	}
	return true
}

// watchAlbum waits out the quiet window for one album key, re-arming the
// deadline each time a new attachment or destination registers, then
// flushes the album. Runs as a detached background task.
func (e *Engine) watchAlbum(ctx context.Context, key string) {
	for {
		remaining, ok := e.albums.quietFor(key, e.quietPeriod)
		if !ok {
			return
		}
		if remaining <= 0 {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(remaining):
		}
	}

	group, ok := e.albums.take(key)
	if !ok {
		return
	}

	// Scheduled sends share the coalescing path: hold the complete album
	// until the requested time.
	if group.sendAt != nil {
		if delay := time.Until(*group.sendAt); delay > 0 {
			log.Printf("[Album Group:%s] Holding flush for %v (scheduled send)", key, delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}

	e.deliverAlbum(ctx, key, group)
}

// deliverAlbum fans the deduplicated attachment set out to every
// registered destination as one album per channel, then reports back to
// the requester.
func (e *Engine) deliverAlbum(ctx context.Context, key string, group *pendingAlbum) {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	group.mu.Lock()
	destinations := group.destinations
	media := dedupeItems(group.items)
	caption := group.caption
	group.mu.Unlock()

	if len(media) == 0 {
		log.Printf("[Album Group:%s] Nothing to deliver after dedup", key)
		return
	}

	log.Printf("[Album Group:%s User:%d] Delivering %d attachment(s) to %d channel(s)", key, group.requesterID, len(media), len(destinations))

	var sent []delivered
	for _, dest := range destinations {
		messages, err := e.bot.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
			ChatID: tu.ID(dest.channelID),
			Media:  media,
		})
		if err != nil {
			log.Printf("[Album Group:%s Channel:%d] Send failed: %v", key, dest.channelID, err)
			sentry.CaptureException(fmt.Errorf("album %s to channel %d: %w", key, dest.channelID, err))
			continue
		}
		if len(messages) == 0 {
			continue
		}

		footer := locales.GetMessage(localizer, "MsgFooterSubscribe", map[string]interface{}{
			"Name": dest.name,
			"Link": dest.link,
		}, nil)

		first := messages[0]
		edited, err := e.bot.EditMessageCaption(ctx, &telego.EditMessageCaptionParams{
			ChatID:    tu.ID(dest.channelID),
			MessageID: first.MessageID,
			Caption:   caption + footer,
			ParseMode: telego.ModeMarkdown,
		})
		if err != nil {
			log.Printf("[Album Group:%s Channel:%d] Caption edit failed: %v", key, dest.channelID, err)
			edited = &first
		}

		sent = append(sent, delivered{
			channelID:   dest.channelID,
			channelName: dest.name,
			messageLink: messageLink(edited.Chat, edited.MessageID),
			text:        caption,
		})
	}

	doneMsg := locales.GetMessage(localizer, "MsgMediaSent", nil, nil)
	_, _ = e.bot.SendMessage(ctx, tu.Message(tu.ID(group.chatID), doneMsg))

	for _, d := range sent {
		e.savePost(ctx, d, group.sourceMsgID, group.requesterID)
	}

	if err := SendTextDocument(ctx, e.bot, group.chatID, "posts.txt", deliveryReport(sent)); err != nil {
		log.Printf("[Album Group:%s] Failed to send delivery report: %v", key, err)
	}
}

// channelLink resolves the canonical link of a destination, falling back
// to a freshly fetched invite link when none is stored.
func (e *Engine) channelLink(ctx context.Context, channel *models.Channel) (string, error) {
	if link := NormalizeLink(channel.ChannelLink); link != "" {
		return link, nil
	}

	chat, err := e.bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.ID(channel.ChannelID)})
	if err != nil {
		return "", fmt.Errorf("resolve invite link of channel %d: %w", channel.ChannelID, err)
	}
	return NormalizeLink(chat.InviteLink), nil
}

// savePost writes the append-only audit row for one delivery. A write
// failure loses the audit record, never the delivered message.
func (e *Engine) savePost(ctx context.Context, d delivered, sourceMsgID int, requesterID int64) {
	err := e.posts.SavePost(ctx, models.Post{
		ChannelID:   d.channelID,
		ChannelName: d.channelName,
		PostID:      sourceMsgID,
		PostText:    d.text,
		UserID:      requesterID,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.Printf("[Broadcast User:%d Channel:%d] Failed to save post log: %v", requesterID, d.channelID, err)
		sentry.CaptureException(err)
	}
}
