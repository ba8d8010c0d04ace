package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	m := NewManager()

	assert.Equal(t, StateIdle, m.GetState(1), "unknown users are idle")

	m.SetState(1, StateAwaitingContent)
	assert.Equal(t, StateAwaitingContent, m.GetState(1))
	assert.Equal(t, StateIdle, m.GetState(2), "states are per user")

	m.SetState(1, StateIdle)
	assert.Equal(t, StateIdle, m.GetState(1))
}

func TestSelection(t *testing.T) {
	m := NewManager()

	assert.Empty(t, m.Selection(1))

	assert.True(t, m.ToggleSelected(1, -1001))
	assert.False(t, m.ToggleSelected(1, -1001), "second toggle deselects")
	assert.True(t, m.ToggleSelected(1, -1001))

	m.SetSelection(1, []int64{-1001, -1002})
	assert.ElementsMatch(t, []int64{-1001, -1002}, m.Selection(1))

	m.ClearSelection(1)
	assert.Empty(t, m.Selection(1))
}

func TestSnapshotAndReset(t *testing.T) {
	m := NewManager()

	m.Update(1, func(s *Session) {
		s.State = StateAwaitingGroupName
		s.ActiveGroupID = 5
		s.GroupPick[-1001] = struct{}{}
	})

	snap := m.Snapshot(1)
	assert.Equal(t, StateAwaitingGroupName, snap.State)
	assert.Equal(t, int64(5), snap.ActiveGroupID)
	assert.Contains(t, snap.GroupPick, int64(-1001))

	m.Reset(1)
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.Empty(t, m.Snapshot(1).GroupPick)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	m := NewManager()

	m.Update(1, func(s *Session) {
		s.Selected[-1001] = struct{}{}
		s.GroupPick[-1002] = struct{}{}
		s.PostsPick[-1003] = struct{}{}
	})

	snap := m.Snapshot(1)
	m.ToggleSelected(1, -2001)
	m.Update(1, func(s *Session) {
		delete(s.GroupPick, -1002)
		s.PostsPick[-2003] = struct{}{}
	})

	assert.NotContains(t, snap.Selected, int64(-2001))
	assert.Contains(t, snap.GroupPick, int64(-1002))
	assert.NotContains(t, snap.PostsPick, int64(-2003))
}

func TestSnapshotConcurrentWithToggles(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.ToggleSelected(1, int64(i%10))
		}
	}()

	// Ranging over the snapshot maps while the other goroutine keeps
	// writing must stay safe.
	for i := 0; i < 500; i++ {
		snap := m.Snapshot(1)
		n := 0
		for range snap.Selected {
			n++
		}
		assert.LessOrEqual(t, n, 10)
	}
	wg.Wait()
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			m.ToggleSelected(n%5, n)
			m.SetState(n%5, StateAwaitingContent)
			_ = m.Snapshot(n % 5)
			_ = m.Selection(n % 5)
		}(int64(i))
	}
	wg.Wait()

	for u := int64(0); u < 5; u++ {
		assert.Equal(t, StateAwaitingContent, m.GetState(u))
		assert.Len(t, m.Selection(u), 10)
	}
}
