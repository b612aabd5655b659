package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"motioncomic/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	Database  string `toml:"database"`
}

// Archive configures page loading.
type Archive struct {
	// Extractors are tried in order for RAR-based archives.
	Extractors []string `toml:"extractors"`
}

// Detection configures the gutter panel detector.
type Detection struct {
	WhiteThreshold int     `toml:"white_threshold"`
	GutterCoverage float64 `toml:"gutter_coverage"`
	MinAreaRatio   float64 `toml:"min_area_ratio"`
	MaxAreaRatio   float64 `toml:"max_area_ratio"`
	MinAspect      float64 `toml:"min_aspect"`
	MaxAspect      float64 `toml:"max_aspect"`
	Fallback       bool    `toml:"fallback"`
}

// ReadingOrder configures panel ordering.
type ReadingOrder struct {
	Direction         string  `toml:"direction"`
	IoUThreshold      float64 `toml:"iou_threshold"`
	RowTolerance      float64 `toml:"row_tolerance"`
	SpanningThreshold float64 `toml:"spanning_threshold"`
}

// Classification configures the balloon/caption/sfx heuristics.
type Classification struct {
	BrightThreshold int     `toml:"bright_threshold"`
	DarkThreshold   int     `toml:"dark_threshold"`
	CaptionSolidity float64 `toml:"caption_solidity"`
}

// OCR configures text recognition.
type OCR struct {
	Enabled     bool    `toml:"enabled"`
	Language    string  `toml:"language"`
	PageSegMode int     `toml:"page_seg_mode"`
	Padding     float64 `toml:"padding"`
	Binarize    bool    `toml:"binarize"`
}

// Dialogue configures line merging, sound cues and voice casting.
type Dialogue struct {
	MergeGap             float64           `toml:"merge_gap"`
	RowTolerance         float64           `toml:"row_tolerance"`
	SFXDuration          float64           `toml:"sfx_duration"`
	ZeroDurationEmptySFX bool              `toml:"zero_duration_empty_sfx"`
	Voices               []string          `toml:"voices"`
	Narrator             string            `toml:"narrator"`
	Cast                 map[string]string `toml:"cast"`
}

// Speech configures the reading-rate duration estimator.
type Speech struct {
	WordsPerSecond float64 `toml:"words_per_second"`
	RunesPerSecond float64 `toml:"runes_per_second"`
	ShoutFactor    float64 `toml:"shout_factor"`
	WhisperFactor  float64 `toml:"whisper_factor"`
	Minimum        float64 `toml:"minimum"`
	Speed          float64 `toml:"speed"`
}

// Timeline configures scheduling. Durations are seconds.
type Timeline struct {
	BasePanelDuration  float64 `toml:"base_panel_duration"`
	AreaScaled         bool    `toml:"area_scaled"`
	AreaScale          float64 `toml:"area_scale"`
	InterLineGap       float64 `toml:"inter_line_gap"`
	InterPanelPause    float64 `toml:"inter_panel_pause"`
	DurationQuantum    float64 `toml:"duration_quantum"`
	TransitionDuration float64 `toml:"transition_duration"`
	AnimationStyle     string  `toml:"animation_style"`
	Speed              float64 `toml:"speed"`
}

// Workers configures page parallelism.
type Workers struct {
	Pages              int  `toml:"pages"`
	AbortOnPageFailure bool `toml:"abort_on_page_failure"`
}

// Notifications configures ntfy run notifications. An empty topic disables
// them.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Cleanup configures the clean command.
type Cleanup struct {
	// WorkMaxAge is the age, in hours, after which leftover extraction
	// directories are removed.
	WorkMaxAge float64 `toml:"work_max_age"`
}

// Logging configures log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config aggregates every section.
type Config struct {
	Paths          Paths          `toml:"paths"`
	Archive        Archive        `toml:"archive"`
	Detection      Detection      `toml:"detection"`
	ReadingOrder   ReadingOrder   `toml:"reading_order"`
	Classification Classification `toml:"classification"`
	OCR            OCR            `toml:"ocr"`
	Dialogue       Dialogue       `toml:"dialogue"`
	Speech         Speech         `toml:"speech"`
	Timeline       Timeline       `toml:"timeline"`
	Workers        Workers        `toml:"workers"`
	Notifications  Notifications  `toml:"notifications"`
	Cleanup        Cleanup        `toml:"cleanup"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/motioncomic/config.toml")
}

// Load reads the configuration from path, or from the first of the user and
// project locations that exists when path is empty. It returns the config,
// the resolved path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("motioncomic.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, work and log directories and the
// database parent directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir}
	if c.Paths.Database != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.Database))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath expands a leading tilde and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
