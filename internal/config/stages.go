package config

import (
	"time"

	"motioncomic/internal/archive"
	"motioncomic/internal/classify"
	"motioncomic/internal/detection"
	"motioncomic/internal/dialogue"
	"motioncomic/internal/ocr"
	"motioncomic/internal/readingorder"
	"motioncomic/internal/scene"
	"motioncomic/internal/speech"
	"motioncomic/internal/timeline"
)

// seconds converts a TOML float-seconds value.
func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Direction returns the parsed reading direction. Validate rejects unknown
// values, so the zero value is only returned for invalid, unvalidated input.
func (c *Config) Direction() readingorder.Direction {
	dir, _ := readingorder.ParseDirection(c.ReadingOrder.Direction)
	return dir
}

// ArchiveOptions returns the page source options.
func (c *Config) ArchiveOptions() archive.Options {
	return archive.Options{
		WorkDir:    c.Paths.WorkDir,
		Extractors: append([]string(nil), c.Archive.Extractors...),
	}
}

// DetectionConfig returns the gutter detector settings.
func (c *Config) DetectionConfig() detection.Config {
	cfg := detection.DefaultConfig()
	cfg.WhiteThreshold = uint8(c.Detection.WhiteThreshold)
	cfg.GutterCoverage = c.Detection.GutterCoverage
	cfg.MinAreaRatio = c.Detection.MinAreaRatio
	cfg.MaxAreaRatio = c.Detection.MaxAreaRatio
	cfg.MinAspect = c.Detection.MinAspect
	cfg.MaxAspect = c.Detection.MaxAspect
	return cfg
}

// ReadingOrderConfig returns the resolver settings.
func (c *Config) ReadingOrderConfig() readingorder.Config {
	cfg := readingorder.DefaultConfig()
	cfg.Direction = c.Direction()
	cfg.IoUThreshold = c.ReadingOrder.IoUThreshold
	cfg.RowTolerance = c.ReadingOrder.RowTolerance
	cfg.SpanningThreshold = c.ReadingOrder.SpanningThreshold
	return cfg
}

// ClassifyConfig returns the heuristic classifier settings.
func (c *Config) ClassifyConfig() classify.Config {
	cfg := classify.DefaultConfig()
	cfg.BrightThreshold = uint8(c.Classification.BrightThreshold)
	cfg.DarkThreshold = uint8(c.Classification.DarkThreshold)
	cfg.CaptionSolidity = c.Classification.CaptionSolidity
	return cfg
}

// OCRConfig returns the recognizer settings.
func (c *Config) OCRConfig() ocr.Config {
	return ocr.Config{
		Language:    c.OCR.Language,
		PageSegMode: c.OCR.PageSegMode,
		Padding:     c.OCR.Padding,
		Binarize:    c.OCR.Binarize,
	}
}

// DialogueConfig returns the associator settings.
func (c *Config) DialogueConfig() dialogue.Config {
	cfg := dialogue.DefaultConfig()
	cfg.Direction = c.Direction()
	cfg.MergeGap = c.Dialogue.MergeGap
	cfg.RowTolerance = c.Dialogue.RowTolerance
	cfg.SFXDuration = seconds(c.Dialogue.SFXDuration)
	cfg.ZeroDurationEmptySFX = c.Dialogue.ZeroDurationEmptySFX
	return cfg
}

// VoiceCast returns the configured speaker to voice table.
func (c *Config) VoiceCast() dialogue.VoiceCast {
	cast := dialogue.VoiceCast{
		Voices:   append([]string(nil), c.Dialogue.Voices...),
		Narrator: c.Dialogue.Narrator,
	}
	if len(c.Dialogue.Cast) > 0 {
		cast.Assigned = make(map[scene.SpeakerID]string, len(c.Dialogue.Cast))
		for speaker, voice := range c.Dialogue.Cast {
			cast.Assigned[scene.SpeakerID(speaker)] = voice
		}
	}
	return cast
}

// SpeechConfig returns the estimator settings.
func (c *Config) SpeechConfig() speech.Config {
	return speech.Config{
		WordsPerSecond: c.Speech.WordsPerSecond,
		RunesPerSecond: c.Speech.RunesPerSecond,
		ShoutFactor:    c.Speech.ShoutFactor,
		WhisperFactor:  c.Speech.WhisperFactor,
		Minimum:        seconds(c.Speech.Minimum),
		Speed:          c.Speech.Speed,
	}
}

// BuilderConfig returns the timeline builder settings.
func (c *Config) BuilderConfig() timeline.Config {
	style, err := timeline.ParseAnimationStyle(c.Timeline.AnimationStyle)
	if err != nil {
		style = timeline.StylePanAndScan
	}
	return timeline.Config{
		BasePanelDuration:  seconds(c.Timeline.BasePanelDuration),
		AreaScaled:         c.Timeline.AreaScaled,
		AreaScale:          c.Timeline.AreaScale,
		InterLineGap:       seconds(c.Timeline.InterLineGap),
		InterPanelPause:    seconds(c.Timeline.InterPanelPause),
		DurationQuantum:    seconds(c.Timeline.DurationQuantum),
		TransitionDuration: seconds(c.Timeline.TransitionDuration),
		AnimationStyle:     style,
		Speed:              c.Timeline.Speed,
	}
}

// NotifyTimeout returns the ntfy request timeout.
func (c *Config) NotifyTimeout() time.Duration {
	if c.Notifications.RequestTimeout <= 0 {
		return defaultNtfyTimeout * time.Second
	}
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

// WorkMaxAge returns the age after which work directories are stale.
func (c *Config) WorkMaxAge() time.Duration {
	return time.Duration(c.Cleanup.WorkMaxAge * float64(time.Hour))
}
