package timeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"motioncomic/internal/scene"
)

// WriteSRT writes the voice events that carry text as SubRip subtitles.
func WriteSRT(w io.Writer, tl *Timeline) error {
	bw := bufio.NewWriter(w)
	n := 0
	for ev := range tl.Track(TrackVoice) {
		text := strings.TrimSpace(ev.Text)
		if text == "" || ev.Duration <= 0 {
			continue
		}
		n++
		if n > 1 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n", n, FormatSRTTimestamp(ev.Start), FormatSRTTimestamp(ev.End()), text)
	}
	return bw.Flush()
}

// FormatSRTTimestamp renders d as HH:MM:SS,mmm, rounding to the nearest
// millisecond.
func FormatSRTTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	msTotal := int64((d + time.Millisecond/2) / time.Millisecond)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteConcat writes the visual track as an ffmpeg concat script. file maps
// a panel to the path of its still image. Inter-panel pauses extend the
// preceding entry so the script's total length matches the timeline. The
// last file is repeated without a duration, as the concat demuxer expects.
func WriteConcat(w io.Writer, tl *Timeline, file func(scene.PanelID) string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("ffconcat version 1.0\n")

	var visuals []Event
	for ev := range tl.Track(TrackVisual) {
		visuals = append(visuals, ev)
	}
	for i, ev := range visuals {
		length := ev.Duration
		if i+1 < len(visuals) {
			length = visuals[i+1].Start - ev.Start
		}
		fmt.Fprintf(bw, "file %s\nduration %.3f\n", quoteConcat(file(ev.Panel)), length.Seconds())
	}
	if n := len(visuals); n > 0 {
		fmt.Fprintf(bw, "file %s\n", quoteConcat(file(visuals[n-1].Panel)))
	}
	return bw.Flush()
}

func quoteConcat(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
