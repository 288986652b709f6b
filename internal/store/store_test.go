package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/critterworld/internal/memory"
	"github.com/talgya/critterworld/internal/vec"
)

func TestPositionsSnapshotIsCopy(t *testing.T) {
	s := New()
	s.SetPosition("a", vec.Vec3{X: 1})

	snap := s.Positions()
	snap["a"] = vec.Vec3{X: 99}

	p, ok := s.Position("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, p.X)
}

func TestAffinityThroughStore(t *testing.T) {
	s := New()
	assert.Equal(t, 0.0, s.Affinity("A", "B"))

	s.AdjustAffinity("A", "B", -0.5)
	s.AdjustAffinity("B", "A", -0.8)
	assert.Equal(t, -1.0, s.Affinity("A", "B"))
	assert.Equal(t, -1.0, s.Affinity("B", "A"))
}

func TestDialogueLockExclusivity(t *testing.T) {
	s := New()
	require.True(t, s.TryAcquireDialogueLock())
	assert.False(t, s.TryAcquireDialogueLock())
	assert.True(t, s.DialogueBusy())

	s.ReleaseDialogueLock()
	assert.True(t, s.TryAcquireDialogueLock())
	s.ReleaseDialogueLock()
}

func TestDialogueLockUnderContention(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	won := make(chan int, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if s.TryAcquireDialogueLock() {
				won <- n
			}
		}(i)
	}
	wg.Wait()
	close(won)

	count := 0
	for range won {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestTakeDialogueConsumes(t *testing.T) {
	s := New()
	s.PostDialogue(Dialogue{ID: "1", Speaker: "robo", Target: "pip", Text: "hello"})

	d, ok := s.TakeDialogueFor("pip")
	require.True(t, ok)
	assert.Equal(t, "hello", d.Text)

	_, ok = s.TakeDialogueFor("pip")
	assert.False(t, ok)
}

func TestRemoveKeepsRelationships(t *testing.T) {
	s := New()
	s.SetPosition("pip", vec.Vec3{})
	s.AdjustAffinity("pip", "momo", 0.5)
	s.Remove("pip")

	_, ok := s.Position("pip")
	assert.False(t, ok)
	assert.InDelta(t, 0.5, s.Affinity("pip", "momo"), 1e-9)
}

func TestLogRing(t *testing.T) {
	s := New()
	for i := 0; i < logCapacity+50; i++ {
		s.AppendLog(LogEntry{Category: "test", At: time.Now()})
	}
	assert.Len(t, s.RecentLog(logCapacity*2), logCapacity)
	assert.Len(t, s.RecentLog(10), 10)
}

func TestMemoriesSnapshot(t *testing.T) {
	s := New()
	s.AddMemory("pip", memory.Record{Content: "a thing happened", Salience: 0.4})
	got := s.Memories("pip")
	require.Len(t, got, 1)
	got[0].Content = "tampered"
	assert.Equal(t, "a thing happened", s.Memories("pip")[0].Content)
}

func TestCommitNotifiesWithoutBlocking(t *testing.T) {
	s := New()
	ch := s.Subscribe()

	// Two commits with nobody draining must not block.
	s.Commit()
	s.Commit()

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending signal")
	}
}
