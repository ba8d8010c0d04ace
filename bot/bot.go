// Package bot owns the update loop: it reads updates from telego's long
// polling channel, applies rate limiting and panic recovery, and routes
// each update to the handlers package.
package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/ratelimit"

	"multipost-bot/internal/handlers"
	"multipost-bot/internal/locales"
	"multipost-bot/pkg/telegoapi"
)

// Bot wraps the telego update stream and fans each update out to the
// message handler on its own goroutine. Updates of one user are serialized;
// distinct users proceed concurrently.
type Bot struct {
	bot         telegoapi.BotAPI
	updatesChan <-chan telego.Update
	handler     *handlers.MessageHandler
	engine      handlers.BroadcastEngine
	ratelimiter ratelimit.Limiter
	userLocks   sync.Map // userID -> *sync.Mutex
	debug       bool
}

// BotDeps holds the dependencies required by the Bot.
type BotDeps struct {
	Bot         telegoapi.BotAPI
	UpdatesChan <-chan telego.Update
	Handler     *handlers.MessageHandler
	Engine      handlers.BroadcastEngine
	Debug       bool
}

// New creates a new Bot instance from its dependencies.
func New(deps BotDeps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.Handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("broadcast engine cannot be nil")
	}

	return &Bot{
		bot:         deps.Bot,
		updatesChan: deps.UpdatesChan,
		handler:     deps.Handler,
		engine:      deps.Engine,
		ratelimiter: ratelimit.New(20),
		debug:       deps.Debug,
	}, nil
}

// handleCommandUpdate processes a message identified as a command.
func (b *Bot) handleCommandUpdate(ctx context.Context, message telego.Message) {
	command := strings.TrimPrefix(strings.Fields(message.Text)[0], "/")
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}
	logPrefix := fmt.Sprintf("[Cmd:%s User:%d]", command, message.From.ID)

	handlerFunc := b.handler.GetCommandHandler(command)
	if handlerFunc == nil {
		log.Printf("%s No handler found", logPrefix)
		localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
		unknownCmdMsg := locales.GetMessage(localizer, "MsgErrorUnknownCommand", nil, nil)
		if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), unknownCmdMsg)); err != nil {
			log.Printf("%s Failed to send unknown command message: %v", logPrefix, err)
		}
		return
	}

	if b.debug {
		log.Printf("%s Executing handler", logPrefix)
	}
	if err := handlerFunc(ctx, b.bot, message); err != nil {
		log.Printf("%s Handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s handler error: %w", logPrefix, err))
	}
}

// handleCallbackQuery processes an inline-keyboard press.
func (b *Bot) handleCallbackQuery(ctx context.Context, query telego.CallbackQuery) {
	logPrefix := fmt.Sprintf("[Callback User:%d QueryID:%s]", query.From.ID, query.ID)
	if b.debug {
		log.Printf("%s Received callback query with data: %q", logPrefix, query.Data)
	}

	if err := b.handler.HandleCallbackQuery(ctx, b.bot, query); err != nil {
		log.Printf("%s Callback handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s callback handler error: %w", logPrefix, err))
		localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
		errorMsg := locales.GetMessage(localizer, "MsgErrorGeneral", nil, nil)
		_ = b.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID, Text: errorMsg})
	}
}

// userLock returns the serialization mutex of one user, creating it on
// first use. Locks are never discarded; the user population is tiny.
func (b *Bot) userLock(userID int64) *sync.Mutex {
	lock, _ := b.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// processUpdate routes incoming updates to the appropriate handlers.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	// Global rate limit across all update processing goroutines.
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in processUpdate: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
			sentry.Flush(time.Second * 2)
		}
	}()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch {
	case update.Message != nil:
		message := *update.Message
		if message.From == nil {
			log.Printf("Ignoring message %d from chat %d without sender", message.MessageID, message.Chat.ID)
			return
		}

		// Later physical parts of an in-flight album are appended straight
		// into the coalescing registry. Updates are processed concurrently,
		// so this must run before the stateful routing: by the time a later
		// part arrives the send flow may already have consumed the first.
		if message.MediaGroupID != "" && b.engine.AppendAlbumPart(message) {
			if b.debug {
				log.Printf("[Album Group:%s] Message %d appended to pending album", message.MediaGroupID, message.MessageID)
			}
			return
		}

		// Stateful routing of one user's updates must not interleave:
		// the content flow consumes exactly the next message after
		// arming, and two messages racing through the state check would
		// both broadcast. Album parts stay on the detached fast path
		// above.
		lock := b.userLock(message.From.ID)
		lock.Lock()
		defer lock.Unlock()

		if strings.HasPrefix(message.Text, "/") {
			b.handleCommandUpdate(processingCtx, message)
			return
		}

		if err := b.handler.HandleMessage(processingCtx, b.bot, message); err != nil {
			log.Printf("[Message User:%d Msg:%d] Handler error: %v", message.From.ID, message.MessageID, err)
			sentry.CaptureException(fmt.Errorf("message handler error: %w", err))
		}

	case update.CallbackQuery != nil:
		query := *update.CallbackQuery
		lock := b.userLock(query.From.ID)
		lock.Lock()
		defer lock.Unlock()
		b.handleCallbackQuery(processingCtx, query)

	default:
		if b.debug {
			log.Printf("Ignoring unhandled update type: %+v", update)
		}
	}
}

// Start begins the bot's update processing loop and blocks until the
// context is cancelled and all in-flight updates finished.
func (b *Bot) Start(ctx context.Context) {
	log.Println("Listening for updates...")

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Println("Context done, stopping update processing...")
			wg.Wait()
			log.Println("All update processing finished.")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Updates channel closed.")
				wg.Wait()
				return
			}
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

// Stop is a no-op hook: the actual stop is triggered by context
// cancellation in Start.
func (b *Bot) Stop() {
	log.Println("Bot Stop method called. Actual stop triggered by context cancellation.")
}

// SetupCommands registers the command menu with Telegram.
func (b *Bot) SetupCommands(ctx context.Context) error {
	params := &telego.SetMyCommandsParams{
		Commands: b.handler.BotCommands(),
	}
	if err := b.bot.SetMyCommands(ctx, params); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	log.Println("Bot commands successfully set.")
	return nil
}
