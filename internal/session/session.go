// Package session holds per-user conversation state: what the bot is
// currently waiting for from a user, which channels are ticked in the
// pickers, and pagination cursors. State lives only in process memory and
// is lost on restart.
package session

import "sync"

// State is the tagged conversation state of one user.
type State string

const (
	// StateIdle is the default state, no interactive flow in progress.
	StateIdle State = ""
	// StateAwaitingContent means the user confirmed a selection and the
	// next incoming message is the broadcast content.
	StateAwaitingContent State = "awaiting_content"
	// StateAwaitingChannelForward means the bot waits for a message
	// forwarded from the channel to be registered.
	StateAwaitingChannelForward State = "awaiting_channel_forward"
	// StateAwaitingGroupName means the bot waits for the name of a new
	// group whose channels were already picked.
	StateAwaitingGroupName State = "awaiting_group_name"
	// StateAwaitingGroupRename means the bot waits for the new name of an
	// existing group.
	StateAwaitingGroupRename State = "awaiting_group_rename"
)

// Session is the per-user scratchpad behind the interactive flows.
type Session struct {
	State State

	// Selected is the current broadcast target set (channel IDs).
	Selected map[int64]struct{}
	// GroupPick is the channel set picked while composing a new group or
	// editing an existing one.
	GroupPick map[int64]struct{}
	// PostsPick is the channel set picked in the post-history flow.
	PostsPick map[int64]struct{}

	ChannelsPage      int
	GroupsPage        int
	GroupChannelsPage int
	PostsPage         int

	// ActiveGroupID is the group the user currently operates on.
	ActiveGroupID int64
	// GroupEditMode selects what the group-channel picker is editing:
	// "add" or "remove" membership of ActiveGroupID.
	GroupEditMode string
}

func newSession() *Session {
	return &Session{
		Selected:  make(map[int64]struct{}),
		GroupPick: make(map[int64]struct{}),
		PostsPick: make(map[int64]struct{}),
	}
}

// Manager owns the sessions of all users. Different users may be mutated
// concurrently; each mutation runs under the manager lock.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Session)}
}

// Update runs fn against the user's session, creating it on first use.
func (m *Manager) Update(userID int64, fn func(s *Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = newSession()
		m.sessions[userID] = s
	}
	fn(s)
}

// GetState returns the user's current conversation state.
func (m *Manager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[userID]; ok {
		return s.State
	}
	return StateIdle
}

// SetState transitions the user to the given state.
func (m *Manager) SetState(userID int64, state State) {
	m.Update(userID, func(s *Session) { s.State = state })
}

// Selection returns a copy of the user's broadcast target set.
func (m *Manager) Selection(userID int64) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(s.Selected))
	for id := range s.Selected {
		ids = append(ids, id)
	}
	return ids
}

// SetSelection replaces the user's broadcast target set.
func (m *Manager) SetSelection(userID int64, channelIDs []int64) {
	m.Update(userID, func(s *Session) {
		s.Selected = make(map[int64]struct{}, len(channelIDs))
		for _, id := range channelIDs {
			s.Selected[id] = struct{}{}
		}
	})
}

// ToggleSelected flips one channel in the broadcast target set and reports
// whether it is selected afterwards.
func (m *Manager) ToggleSelected(userID, channelID int64) bool {
	var selected bool
	m.Update(userID, func(s *Session) {
		if _, ok := s.Selected[channelID]; ok {
			delete(s.Selected, channelID)
		} else {
			s.Selected[channelID] = struct{}{}
			selected = true
		}
	})
	return selected
}

// ClearSelection empties the broadcast target set.
func (m *Manager) ClearSelection(userID int64) {
	m.Update(userID, func(s *Session) { s.Selected = make(map[int64]struct{}) })
}

// Snapshot returns an independent copy of the user's session for rendering.
// The picker maps are copied too: the caller reads them outside the manager
// lock while other updates keep mutating the live session.
func (m *Manager) Snapshot(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return *newSession()
	}
	snap := *s
	snap.Selected = copySet(s.Selected)
	snap.GroupPick = copySet(s.GroupPick)
	snap.PostsPick = copySet(s.PostsPick)
	return snap
}

func copySet(src map[int64]struct{}) map[int64]struct{} {
	dst := make(map[int64]struct{}, len(src))
	for id := range src {
		dst[id] = struct{}{}
	}
	return dst
}

// Reset drops the user's session entirely.
func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
