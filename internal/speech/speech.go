// Package speech estimates how long a line of dialogue takes to voice.
//
// Estimates are scheduling hints only. Measured durations reported by the
// renderer replace them during timeline re-flow.
package speech

import (
	"math"
	"time"

	"golang.org/x/text/language"

	langs "motioncomic/internal/language"
	"motioncomic/internal/scene"
	"motioncomic/internal/textutil"
)

// Estimator returns the expected speech duration for a line. Implementations
// must be pure.
type Estimator func(text string, emphasis scene.Emphasis, lang language.Tag) time.Duration

// Config tunes the default reading-rate estimator.
type Config struct {
	WordsPerSecond float64
	RunesPerSecond float64
	ShoutFactor    float64
	WhisperFactor  float64
	Minimum        time.Duration
	// Speed scales every estimate; 2.0 speaks twice as fast.
	Speed float64
}

// DefaultConfig returns the stock reading rates.
func DefaultConfig() Config {
	return Config{
		WordsPerSecond: 2.5,
		RunesPerSecond: 8,
		ShoutFactor:    0.85,
		WhisperFactor:  1.2,
		Minimum:        300 * time.Millisecond,
		Speed:          1.0,
	}
}

// New builds a reading-rate estimator. Zero or negative rates fall back to
// the defaults.
func New(cfg Config) Estimator {
	def := DefaultConfig()
	if cfg.WordsPerSecond <= 0 {
		cfg.WordsPerSecond = def.WordsPerSecond
	}
	if cfg.RunesPerSecond <= 0 {
		cfg.RunesPerSecond = def.RunesPerSecond
	}
	if cfg.ShoutFactor <= 0 {
		cfg.ShoutFactor = def.ShoutFactor
	}
	if cfg.WhisperFactor <= 0 {
		cfg.WhisperFactor = def.WhisperFactor
	}
	if cfg.Speed <= 0 {
		cfg.Speed = def.Speed
	}
	if cfg.Minimum < 0 {
		cfg.Minimum = 0
	}

	return func(text string, emphasis scene.Emphasis, lang language.Tag) time.Duration {
		var seconds float64
		if langs.IsCJK(lang) {
			seconds = float64(textutil.LetterCount(text)) / cfg.RunesPerSecond
		} else {
			seconds = float64(textutil.WordCount(text)) / cfg.WordsPerSecond
		}
		if seconds == 0 {
			return 0
		}
		if emphasis.Has(scene.EmphasisShout) {
			seconds *= cfg.ShoutFactor
		}
		if emphasis.Has(scene.EmphasisWhisper) {
			seconds *= cfg.WhisperFactor
		}
		seconds /= cfg.Speed

		d := time.Duration(math.Round(seconds*1000)) * time.Millisecond
		if d < cfg.Minimum {
			d = cfg.Minimum
		}
		return d
	}
}

// Fixed returns an estimator that yields d for every non-empty line.
func Fixed(d time.Duration) Estimator {
	return func(text string, _ scene.Emphasis, _ language.Tag) time.Duration {
		if textutil.LetterCount(text) == 0 {
			return 0
		}
		return d
	}
}

// Table returns an estimator that looks durations up by exact text, falling
// back to next for unknown lines.
func Table(durations map[string]time.Duration, next Estimator) Estimator {
	return func(text string, emphasis scene.Emphasis, lang language.Tag) time.Duration {
		if d, ok := durations[text]; ok {
			return d
		}
		if next == nil {
			return 0
		}
		return next(text, emphasis, lang)
	}
}
