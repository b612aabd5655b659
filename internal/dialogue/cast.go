package dialogue

import (
	"hash/fnv"

	"motioncomic/internal/scene"
)

// VoiceCast maps speakers to voice names. Lines from speakers without an
// explicit assignment rotate through Voices: unknown speakers by sequence
// index, known ones by a stable hash of their id so a character keeps one
// voice across panels.
type VoiceCast struct {
	Assigned map[scene.SpeakerID]string
	Voices   []string
	// Narrator voices caption lines when set.
	Narrator string
}

// VoiceFor returns the voice for line, or "" when the cast is empty.
func (c VoiceCast) VoiceFor(line scene.DialogueLine) string {
	if line.Kind == scene.KindCaption && c.Narrator != "" {
		return c.Narrator
	}
	if voice, ok := c.Assigned[line.Speaker]; ok && line.Speaker != scene.UnknownSpeaker {
		return voice
	}
	if len(c.Voices) == 0 {
		return ""
	}
	if line.Speaker == scene.UnknownSpeaker {
		return c.Voices[line.Sequence%len(c.Voices)]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(line.Speaker))
	return c.Voices[int(h.Sum32()%uint32(len(c.Voices)))]
}
