package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"motioncomic/internal/classify"
	"motioncomic/internal/config"
	"motioncomic/internal/detection"
	"motioncomic/internal/dialogue"
	langs "motioncomic/internal/language"
	"motioncomic/internal/logging"
	"motioncomic/internal/ocr"
	"motioncomic/internal/pipeline"
	"motioncomic/internal/readingorder"
	"motioncomic/internal/scene"
	"motioncomic/internal/speech"
	"motioncomic/internal/timeline"
)

type stageInputs struct {
	// textsPath names a JSON object of sub-region id to recognized text
	// that replaces OCR.
	textsPath string
	// speakersPath names a JSON object of text unit id to speaker id.
	speakersPath string
}

// buildStages wires the pipeline collaborators from cfg. The closer releases
// the recognizer, if one was started.
func buildStages(cfg *config.Config, in stageInputs, logger *slog.Logger) (pipeline.Stages, io.Closer, error) {
	extractor, closer, err := newExtractor(cfg, in.textsPath, logger)
	if err != nil {
		return pipeline.Stages{}, nil, err
	}

	var detector detection.Detector = detection.NewGutterDetectorWithConfig(cfg.DetectionConfig())
	if cfg.Detection.Fallback {
		detector = detection.WithFallback(detector)
	}

	associator := dialogue.NewAssociatorWithConfig(cfg.DialogueConfig())
	if in.speakersPath != "" {
		var table map[scene.TextUnitID]scene.SpeakerID
		if err := readJSONFile(in.speakersPath, &table); err != nil {
			_ = closer.Close()
			return pipeline.Stages{}, nil, fmt.Errorf("load speakers: %w", err)
		}
		associator = associator.WithSpeakers(dialogue.SpeakerTable(table))
	}

	cast := cfg.VoiceCast()
	builder := timeline.NewBuilder(cfg.BuilderConfig(), speech.New(cfg.SpeechConfig())).WithVoices(cast.VoiceFor)

	return pipeline.Stages{
		Detector:   detector,
		Resolver:   readingorder.NewResolverWithConfig(cfg.ReadingOrderConfig()),
		Classifier: classify.NewHeuristicClassifierWithConfig(cfg.ClassifyConfig()),
		Extractor:  extractor,
		Associator: associator,
		Builder:    builder,
	}, closer, nil
}

func newExtractor(cfg *config.Config, textsPath string, logger *slog.Logger) (ocr.Extractor, io.Closer, error) {
	lang := langs.Parse(cfg.OCR.Language)
	if textsPath != "" {
		var texts map[scene.SubRegionID]string
		if err := readJSONFile(textsPath, &texts); err != nil {
			return nil, nil, fmt.Errorf("load texts: %w", err)
		}
		return ocr.Static{Texts: texts, Language: lang}, nopCloser{}, nil
	}
	if !cfg.OCR.Enabled {
		return ocr.Static{Language: lang}, nopCloser{}, nil
	}
	if !ocr.Available() {
		logging.WarnWithContext(logger, "ocr unavailable; lettering will be empty", "ocr_unavailable",
			logging.String(logging.FieldImpact, "dialogue lines carry no text"),
			logging.String(logging.FieldErrorHint, "build with -tags ocr or set ocr.enabled = false"),
		)
		return ocr.Static{Language: lang}, nopCloser{}, nil
	}
	recognizer, err := ocr.NewTesseract(cfg.OCRConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("start tesseract: %w", err)
	}
	return ocr.NewEngine(recognizer, cfg.OCRConfig()), recognizer, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
