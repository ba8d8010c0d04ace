package broadcast

import (
	"sync"
	"time"

	"github.com/mymmrac/telego"
)

// DefaultQuietPeriod is the quiet window after which an album is considered
// complete. Telegram delivers every attachment of one album as a separate
// update with no end-of-album marker, so completeness is a heuristic: an
// attachment straggling in after the window closes is lost.
const DefaultQuietPeriod = 3 * time.Second

// maxAlbumSize limits the number of attachments kept per album key.
const maxAlbumSize = 10

type albumItem struct {
	fileID string
	media  telego.InputMedia
}

// albumDestination is one channel that registered interest in an album,
// resolved at registration time so the flush does not depend on the store.
type albumDestination struct {
	channelID int64
	name      string
	link      string
}

// pendingAlbum collects the scattered physical updates of one album for a
// set of destination channels until the quiet window closes.
type pendingAlbum struct {
	mu           sync.Mutex
	destinations []albumDestination
	items        []albumItem
	caption      string

	requesterID int64
	chatID      int64
	sourceMsgID int
	sendAt      *time.Time

	lastUpdate time.Time
}

func (p *pendingAlbum) touch() {
	p.lastUpdate = time.Now()
}

// albumRegistry owns all in-flight pending albums, keyed by the transport's
// album key (media group ID). Distinct keys may be mutated concurrently;
// one key is only ever flushed by the single goroutine that created it.
type albumRegistry struct {
	groups sync.Map // map[string]*pendingAlbum
}

func newAlbumRegistry() *albumRegistry {
	return &albumRegistry{}
}

// register adds a destination and its attachments under the album key,
// creating the entry if needed. It reports whether this call created the
// entry; the creator owns the coalescing wait.
func (r *albumRegistry) register(key string, dest albumDestination, items []albumItem, caption string, requesterID, chatID int64, sourceMsgID int, sendAt *time.Time) bool {
	actual, loaded := r.groups.LoadOrStore(key, &pendingAlbum{
		caption:     caption,
		requesterID: requesterID,
		chatID:      chatID,
		sourceMsgID: sourceMsgID,
		sendAt:      sendAt,
	})
	group := actual.(*pendingAlbum)

	group.mu.Lock()
	defer group.mu.Unlock()

	// Re-registrations of a destination are idempotent: concurrent update
	// processing can route the same album part through dispatch twice.
	known := false
	for _, d := range group.destinations {
		if d.channelID == dest.channelID {
			known = true
			break
		}
	}
	if !known {
		group.destinations = append(group.destinations, dest)
	}
	// Duplicate attachments collapse by file ID at flush time.
	group.appendItemsLocked(items)
	group.touch()

	return !loaded
}

// appendParts adds the attachments of a later physical album message. It
// reports whether the key was known; an unknown key means no broadcast is
// collecting this album and the message is not ours to handle.
func (r *albumRegistry) appendParts(key string, items []albumItem) bool {
	actual, ok := r.groups.Load(key)
	if !ok {
		return false
	}
	group := actual.(*pendingAlbum)

	group.mu.Lock()
	defer group.mu.Unlock()

	group.appendItemsLocked(items)
	group.touch()

	return true
}

func (p *pendingAlbum) appendItemsLocked(items []albumItem) {
	for _, item := range items {
		if len(p.items) >= maxAlbumSize {
			return
		}
		p.items = append(p.items, item)
	}
}

// quietFor returns how long the album still has to stay quiet before the
// window of the given length closes. Zero or negative means it is done.
func (r *albumRegistry) quietFor(key string, window time.Duration) (time.Duration, bool) {
	actual, ok := r.groups.Load(key)
	if !ok {
		return 0, false
	}
	group := actual.(*pendingAlbum)

	group.mu.Lock()
	defer group.mu.Unlock()

	return window - time.Since(group.lastUpdate), true
}

// take atomically removes and returns the album, freeing the key for reuse.
func (r *albumRegistry) take(key string) (*pendingAlbum, bool) {
	actual, loaded := r.groups.LoadAndDelete(key)
	if !loaded {
		return nil, false
	}
	return actual.(*pendingAlbum), true
}
