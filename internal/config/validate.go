package config

import (
	"errors"
	"fmt"

	"motioncomic/internal/readingorder"
	"motioncomic/internal/timeline"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateReadingOrder(); err != nil {
		return err
	}
	if err := c.validateClassification(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateDialogue(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateTimeline(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must not be negative")
	}
	if c.Cleanup.WorkMaxAge < 0 {
		return errors.New("cleanup.work_max_age must not be negative")
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.WhiteThreshold < 1 || d.WhiteThreshold > 255 {
		return errors.New("detection.white_threshold must be between 1 and 255")
	}
	if d.GutterCoverage <= 0 || d.GutterCoverage > 1 {
		return errors.New("detection.gutter_coverage must be in (0, 1]")
	}
	if d.MinAreaRatio < 0 || d.MaxAreaRatio > 1 || d.MinAreaRatio >= d.MaxAreaRatio {
		return errors.New("detection.min_area_ratio must be below detection.max_area_ratio, both within [0, 1]")
	}
	if d.MinAspect <= 0 || d.MinAspect >= d.MaxAspect {
		return errors.New("detection.min_aspect must be positive and below detection.max_aspect")
	}
	return nil
}

func (c *Config) validateReadingOrder() error {
	if _, err := readingorder.ParseDirection(c.ReadingOrder.Direction); err != nil {
		return fmt.Errorf("reading_order.direction: %w", err)
	}
	if err := unitRange("reading_order.iou_threshold", c.ReadingOrder.IoUThreshold); err != nil {
		return err
	}
	if err := unitRange("reading_order.row_tolerance", c.ReadingOrder.RowTolerance); err != nil {
		return err
	}
	return unitRange("reading_order.spanning_threshold", c.ReadingOrder.SpanningThreshold)
}

func (c *Config) validateClassification() error {
	cl := c.Classification
	if cl.BrightThreshold < 1 || cl.BrightThreshold > 255 || cl.DarkThreshold < 0 || cl.DarkThreshold >= cl.BrightThreshold {
		return errors.New("classification.dark_threshold must be below classification.bright_threshold, both within [0, 255]")
	}
	return unitRange("classification.caption_solidity", cl.CaptionSolidity)
}

func (c *Config) validateOCR() error {
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return errors.New("ocr.page_seg_mode must be between 0 and 13")
	}
	if c.OCR.Padding < 0 {
		return errors.New("ocr.padding must be non-negative")
	}
	return nil
}

func (c *Config) validateDialogue() error {
	if c.Dialogue.MergeGap < 0 {
		return errors.New("dialogue.merge_gap must be non-negative")
	}
	if c.Dialogue.SFXDuration < 0 {
		return errors.New("dialogue.sfx_duration must be non-negative")
	}
	return unitRange("dialogue.row_tolerance", c.Dialogue.RowTolerance)
}

func (c *Config) validateSpeech() error {
	s := c.Speech
	if s.WordsPerSecond <= 0 || s.RunesPerSecond <= 0 {
		return errors.New("speech.words_per_second and speech.runes_per_second must be positive")
	}
	if s.ShoutFactor <= 0 || s.WhisperFactor <= 0 {
		return errors.New("speech.shout_factor and speech.whisper_factor must be positive")
	}
	if s.Minimum < 0 {
		return errors.New("speech.minimum must be non-negative")
	}
	if s.Speed <= 0 {
		return errors.New("speech.speed must be positive")
	}
	return nil
}

func (c *Config) validateTimeline() error {
	t := c.Timeline
	if t.BasePanelDuration <= 0 {
		return errors.New("timeline.base_panel_duration must be positive")
	}
	for name, value := range map[string]float64{
		"timeline.inter_line_gap":      t.InterLineGap,
		"timeline.inter_panel_pause":   t.InterPanelPause,
		"timeline.duration_quantum":    t.DurationQuantum,
		"timeline.transition_duration": t.TransitionDuration,
	} {
		if value < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	if t.AreaScaled && t.AreaScale <= 0 {
		return errors.New("timeline.area_scale must be positive when timeline.area_scaled is set")
	}
	if t.Speed <= 0 {
		return errors.New("timeline.speed must be positive")
	}
	if _, err := timeline.ParseAnimationStyle(t.AnimationStyle); err != nil {
		return fmt.Errorf("timeline.animation_style: %w", err)
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Pages <= 0 {
		return errors.New("workers.pages must be positive")
	}
	return nil
}

func unitRange(name string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}
