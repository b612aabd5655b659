package config

const (
	defaultOutputDir          = "~/.local/share/motioncomic/output"
	defaultWorkDir            = "~/.cache/motioncomic/work"
	defaultLogDir             = "~/.local/share/motioncomic/logs"
	defaultDatabase           = "~/.local/share/motioncomic/runs.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultWhiteThreshold     = 230
	defaultDirection          = "ltr"
	defaultOCRLanguage        = "eng"
	defaultPageSegMode        = 6
	defaultAnimationStyle     = "pan_and_scan"
	defaultBasePanelDuration  = 2.5
	defaultTransitionDuration = 0.5
	defaultInterLineGap       = 0.2
	defaultSFXDuration        = 1.0
	defaultPageWorkers        = 4
	defaultNtfyTimeout        = 10
	defaultWorkMaxAge         = 24
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			Database:  defaultDatabase,
		},
		Archive: Archive{
			Extractors: []string{"unrar", "7z"},
		},
		Detection: Detection{
			WhiteThreshold: defaultWhiteThreshold,
			GutterCoverage: 0.98,
			MinAreaRatio:   0.01,
			MaxAreaRatio:   0.95,
			MinAspect:      0.1,
			MaxAspect:      10,
			Fallback:       true,
		},
		ReadingOrder: ReadingOrder{
			Direction:         defaultDirection,
			IoUThreshold:      0.6,
			RowTolerance:      0.05,
			SpanningThreshold: 0.9,
		},
		Classification: Classification{
			BrightThreshold: 235,
			DarkThreshold:   70,
			CaptionSolidity: 0.93,
		},
		OCR: OCR{
			Enabled:     true,
			Language:    defaultOCRLanguage,
			PageSegMode: defaultPageSegMode,
			Padding:     2,
			Binarize:    true,
		},
		Dialogue: Dialogue{
			MergeGap:             0.6,
			RowTolerance:         0.08,
			SFXDuration:          defaultSFXDuration,
			ZeroDurationEmptySFX: true,
		},
		Speech: Speech{
			WordsPerSecond: 2.5,
			RunesPerSecond: 8,
			ShoutFactor:    0.85,
			WhisperFactor:  1.2,
			Minimum:        0.3,
			Speed:          1,
		},
		Timeline: Timeline{
			BasePanelDuration:  defaultBasePanelDuration,
			AreaScale:          4,
			InterLineGap:       defaultInterLineGap,
			TransitionDuration: defaultTransitionDuration,
			AnimationStyle:     defaultAnimationStyle,
			Speed:              1,
		},
		Workers: Workers{
			Pages: defaultPageWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Cleanup: Cleanup{
			WorkMaxAge: defaultWorkMaxAge,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
