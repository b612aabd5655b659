package timeline

import (
	"bytes"
	"errors"
	"slices"
	"testing"
	"time"

	"motioncomic/internal/services"
)

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnimationStyle = StyleMixed
	cfg.InterPanelPause = ms(150)
	est := table(map[string]time.Duration{"Hello": ms(1234567)})
	tl := mustBuild(t, cfg, est, withCue(panel(0, 0, "Hello"), "BOOM", sec), panel(0, 1), panel(2, 0, "Hello"))
	tl, _ = LockThrough(tl, sec)
	tl, err := Reflow(tl, map[EventID]time.Duration{VoiceID("p002-r00-d00"): ms(987)})
	if err != nil {
		t.Fatalf("Reflow returned error: %v", err)
	}

	data, err := Marshal(tl)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if !slices.Equal(decoded.Events(), tl.Events()) {
		t.Fatalf("events differ after round trip:\n got %+v\nwant %+v", decoded.Events(), tl.Events())
	}
	if decoded.Archive() != "test.cbz" || decoded.Settings() != tl.Settings() {
		t.Fatalf("header differs after round trip: %q %+v", decoded.Archive(), decoded.Settings())
	}
	again, _ := Marshal(decoded)
	if !bytes.Equal(again, data) {
		t.Fatal("re-encoding a decoded timeline changed its bytes")
	}

	// The decoded timeline is fully functional.
	if _, err := Reflow(decoded, map[EventID]time.Duration{VisualID("p000-r01"): 3 * sec}); err != nil {
		t.Fatalf("Reflow on decoded timeline returned error: %v", err)
	}
}

func TestMarshalEmptyTimeline(t *testing.T) {
	tl := mustBuild(t, DefaultConfig(), nil)
	data, err := Marshal(tl)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !bytes.Contains(data, []byte(`"events": []`)) {
		t.Fatalf("empty timeline should encode an empty event list:\n%s", data)
	}
	decoded, err := Unmarshal(data)
	if err != nil || decoded.Len() != 0 {
		t.Fatalf("unexpected decode of empty timeline: %v, %v", decoded, err)
	}
}

func TestUnmarshalRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		marker error
	}{
		{"not json", `{`, services.ErrValidation},
		{"wrong version", `{"archive":"x","version":9,"events":[]}`, services.ErrValidation},
		{"unknown track", `{"archive":"x","version":1,"events":[{"id":"a","track":"smell"}]}`, services.ErrValidation},
		{"orphan voice event", `{"archive":"x","version":1,"events":[{"id":"voice:a","track":"voice","panel":"p000-r00"}]}`, services.ErrStructuralIntegrity},
		{"duplicate id", `{"archive":"x","version":1,"events":[
			{"id":"visual:p","track":"visual","panel":"p"},
			{"id":"visual:p","track":"visual","panel":"q"}]}`, services.ErrStructuralIntegrity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
		})
	}
}
