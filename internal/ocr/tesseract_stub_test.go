//go:build !ocr

package ocr

import (
	"context"
	"errors"
	"testing"
)

func TestStubReturnsNotEnabled(t *testing.T) {
	client, err := NewTesseract(DefaultConfig())
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Fatalf("expected ErrOCRNotEnabled, got %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close on nil stub returned %v", err)
	}
	if _, _, err := (&Tesseract{}).Recognize(context.Background(), nil); !errors.Is(err, ErrOCRNotEnabled) {
		t.Fatalf("expected ErrOCRNotEnabled from Recognize, got %v", err)
	}
	if Available() {
		t.Fatal("Available() should be false without the ocr tag")
	}
}
