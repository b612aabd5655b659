package timeline

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

func dialoguePlan(t *testing.T) *Timeline {
	t.Helper()
	est := table(map[string]time.Duration{"one": sec, "two": 2 * sec, "three": ms(500)})
	return mustBuild(t, DefaultConfig(), est, panel(0, 0, "one", "two", "three"), panel(0, 1), panel(1, 0))
}

// =============================================================================
// Re-flow Tests
// =============================================================================

func TestReflowMeasuredSpeechShiftsLaterEvents(t *testing.T) {
	before := dialoguePlan(t)
	after, err := Reflow(before, map[EventID]time.Duration{VoiceID("p000-r00-d00"): ms(1500)})
	if err != nil {
		t.Fatalf("Reflow returned error: %v", err)
	}
	if err := Validate(after); err != nil {
		t.Fatalf("re-flowed timeline is invalid: %v", err)
	}

	assertDurations(t, "voice starts", starts(after, TrackVoice), []time.Duration{0, ms(1700), ms(3900)})

	first := mustEvent(t, after, VoiceID("p000-r00-d00"))
	if !first.Measured || first.Duration != ms(1500) || first.Base != sec {
		t.Fatalf("unexpected measured event: %+v", first)
	}

	oldVisual := mustEvent(t, before, VisualID("p000-r00"))
	newVisual := mustEvent(t, after, VisualID("p000-r00"))
	if newVisual.Duration-oldVisual.Duration != ms(500) {
		t.Fatalf("visual duration grew by %v, want 500ms", newVisual.Duration-oldVisual.Duration)
	}
	for _, id := range []scene.PanelID{"p000-r01", "p001-r00"} {
		shift := mustEvent(t, after, VisualID(id)).Start - mustEvent(t, before, VisualID(id)).Start
		if shift != ms(500) {
			t.Fatalf("panel %s shifted by %v, want 500ms", id, shift)
		}
	}

	if mustEvent(t, before, VoiceID("p000-r00-d01")).Start != ms(1200) {
		t.Fatal("Reflow modified its input timeline")
	}
}

func TestReflowIsIdempotent(t *testing.T) {
	measured := map[EventID]time.Duration{
		VoiceID("p000-r00-d00"): ms(1500),
		VoiceID("p000-r00-d02"): ms(300),
		VisualID("p000-r01"):    ms(4000),
	}

	s := NewSynchronizer(dialoguePlan(t))
	once, err := s.Reflow(measured)
	if err != nil {
		t.Fatalf("first Reflow returned error: %v", err)
	}
	twice, err := s.Reflow(measured)
	if err != nil {
		t.Fatalf("second Reflow returned error: %v", err)
	}

	a, _ := Marshal(once)
	b, _ := Marshal(twice)
	if !bytes.Equal(a, b) {
		t.Fatalf("re-flow is not idempotent:\n%s\n---\n%s", a, b)
	}
	if mustEvent(t, twice, VisualID("p000-r01")).Duration != 4*sec {
		t.Fatal("measured visual duration was not applied")
	}
}

func TestReflowReplacesRatherThanCompounds(t *testing.T) {
	plan := dialoguePlan(t)
	id := VoiceID("p000-r00-d00")

	first, _ := Reflow(plan, map[EventID]time.Duration{id: 3 * sec})
	second, err := Reflow(first, map[EventID]time.Duration{id: ms(1500)})
	if err != nil {
		t.Fatalf("Reflow returned error: %v", err)
	}
	direct, _ := Reflow(plan, map[EventID]time.Duration{id: ms(1500)})

	a, _ := Marshal(second)
	b, _ := Marshal(direct)
	if !bytes.Equal(a, b) {
		t.Fatal("re-measuring an event should match measuring it once")
	}
}

func TestReflowRejectsUnknownAndNegative(t *testing.T) {
	s := NewSynchronizer(dialoguePlan(t))
	before := s.Snapshot()

	tests := map[string]map[EventID]time.Duration{
		"unknown":  {"voice:p009-r00-d00": sec},
		"negative": {VoiceID("p000-r00-d00"): -sec},
	}
	for name, measured := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Reflow(measured); !errors.Is(err, services.ErrStructuralIntegrity) {
				t.Fatalf("expected structural integrity error, got %v", err)
			}
			if s.Snapshot() != before {
				t.Fatal("failed re-flow replaced the current timeline")
			}
		})
	}
}

// =============================================================================
// Lock Tests
// =============================================================================

func TestReflowKeepsLockedStartsAndNeverMovesLaterEventsEarlier(t *testing.T) {
	est := table(map[string]time.Duration{"long": 3 * sec})
	plan := mustBuild(t, DefaultConfig(), est, panel(0, 0, "long"), panel(0, 1), panel(0, 2))
	assertDurations(t, "visual starts", starts(plan, TrackVisual), []time.Duration{0, 3 * sec, ms(5500)})

	s := NewSynchronizer(plan)
	if err := s.Lock(VisualID("p000-r01")); err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}

	after, err := s.Reflow(map[EventID]time.Duration{VoiceID("p000-r00-d00"): 2 * sec})
	if err != nil {
		t.Fatalf("Reflow returned error: %v", err)
	}
	assertDurations(t, "visual starts", starts(after, TrackVisual), []time.Duration{0, 3 * sec, ms(5500)})

	unlocked, _ := Reflow(plan, map[EventID]time.Duration{VoiceID("p000-r00-d00"): 2 * sec})
	assertDurations(t, "unlocked visual starts", starts(unlocked, TrackVisual), []time.Duration{0, ms(2500), 5 * sec})
}

func TestReflowFailsWhenLockedEventWouldMove(t *testing.T) {
	est := table(map[string]time.Duration{"long": 3 * sec})
	s := NewSynchronizer(mustBuild(t, DefaultConfig(), est, panel(0, 0, "long"), panel(0, 1)))
	if n := s.LockThrough(ms(3500)); n != 3 {
		t.Fatalf("unexpected locked count: got %d want 3", n)
	}
	if n := s.LockThrough(ms(3500)); n != 0 {
		t.Fatalf("relocking should be a no-op, locked %d", n)
	}

	_, err := s.Reflow(map[EventID]time.Duration{VoiceID("p000-r00-d00"): 4 * sec})
	if !errors.Is(err, services.ErrStructuralIntegrity) {
		t.Fatalf("expected structural integrity error, got %v", err)
	}
}

func TestLockUnknownEvent(t *testing.T) {
	s := NewSynchronizer(dialoguePlan(t))
	if err := s.Lock("visual:nope"); !errors.Is(err, services.ErrStructuralIntegrity) {
		t.Fatalf("expected structural integrity error, got %v", err)
	}
}

// =============================================================================
// Property Tests
// =============================================================================

func randomPlan(t *testing.T, rng *rand.Rand) (*Timeline, []scene.PanelScene) {
	t.Helper()
	durations := make(map[string]time.Duration)
	var panels []scene.PanelScene
	n := 1 + rng.IntN(6)
	for i := 0; i < n; i++ {
		var texts []string
		for j := rng.IntN(4); j > 0; j-- {
			text := string(rune('a'+len(durations)%26)) + string(rune('a'+len(durations)/26))
			durations[text] = ms(100 + rng.IntN(3000))
			texts = append(texts, text)
		}
		ps := panel(i/3, i%3, texts...)
		for j := rng.IntN(3); j > 0; j-- {
			ps = withCue(ps, "BAM", ms(rng.IntN(2000)))
		}
		panels = append(panels, ps)
	}
	cfg := DefaultConfig()
	cfg.InterPanelPause = ms(rng.IntN(500))
	return mustBuild(t, cfg, table(durations), panels...), panels
}

func TestReflowProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for trial := 0; trial < 200; trial++ {
		plan, panels := randomPlan(t, rng)
		lockAt := time.Duration(rng.Int64N(int64(plan.Duration()) + 1))
		locked, _ := LockThrough(plan, lockAt)

		measured := make(map[EventID]time.Duration)
		for ev := range locked.All() {
			if ev.Start >= lockAt && rng.IntN(2) == 0 {
				measured[ev.ID] = ms(rng.IntN(4000))
			}
		}

		after, err := Reflow(locked, measured)
		if err != nil {
			t.Fatalf("trial %d: Reflow returned error: %v", trial, err)
		}
		if err := ValidateAgainst(after, panels); err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		floor := time.Duration(1<<63 - 1)
		for ev := range locked.All() {
			if ev.Locked {
				floor = min(floor, ev.Start)
			}
		}
		for ev := range locked.All() {
			got := mustEvent(t, after, ev.ID)
			if ev.Locked && got.Start != ev.Start {
				t.Fatalf("trial %d: locked event %s moved from %v to %v", trial, ev.ID, ev.Start, got.Start)
			}
			if ev.Start >= floor && got.Start < ev.Start {
				t.Fatalf("trial %d: event %s moved earlier from %v to %v", trial, ev.ID, ev.Start, got.Start)
			}
		}

		again, err := Reflow(after, measured)
		if err != nil {
			t.Fatalf("trial %d: second Reflow returned error: %v", trial, err)
		}
		a, _ := Marshal(after)
		b, _ := Marshal(again)
		if !bytes.Equal(a, b) {
			t.Fatalf("trial %d: re-flow is not idempotent", trial)
		}
	}
}

func TestSynchronizerConcurrentReflow(t *testing.T) {
	s := NewSynchronizer(dialoguePlan(t))
	measured := map[EventID]time.Duration{VoiceID("p000-r00-d00"): ms(1500)}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := s.Reflow(measured); err != nil {
				t.Errorf("Reflow returned error: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := Validate(s.Snapshot()); err != nil {
				t.Errorf("snapshot is invalid: %v", err)
			}
		}()
	}
	wg.Wait()

	want, _ := Reflow(dialoguePlan(t), measured)
	a, _ := Marshal(s.Snapshot())
	b, _ := Marshal(want)
	if !bytes.Equal(a, b) {
		t.Fatal("concurrent re-flow diverged from a single re-flow")
	}
}
