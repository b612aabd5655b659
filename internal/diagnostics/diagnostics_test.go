package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"motioncomic/internal/services"
)

func TestFromErrorClassifies(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{services.Wrap(services.ErrDecode, "decode", "page 3", "corrupt png", errors.New("bad header")), services.CategoryCollaborator},
		{services.Wrap(services.ErrRecognition, "ocr", "p001-r00-s00", "", nil), services.CategoryCollaborator},
		{services.Wrap(services.ErrUpstreamDegradation, "detect", "", "no panels", nil), services.CategoryDegradation},
		{services.Wrap(services.ErrStructuralIntegrity, "timeline", "build", "dup", nil), services.CategoryStructural},
		{context.Canceled, services.CategoryCanceled},
	}
	for _, tt := range tests {
		d := FromError("stage", 1, "", tt.err)
		if d.Kind != tt.want {
			t.Errorf("FromError(%v).Kind = %s, want %s", tt.err, d.Kind, tt.want)
		}
	}

	d := FromError("decode", 3, "", services.Wrap(services.ErrDecode, "decode", "page 3", "corrupt png", nil))
	if d.Message != "decode: page 3: corrupt png" {
		t.Fatalf("unexpected message: got %q", d.Message)
	}
}

func TestReportSortsDeterministically(t *testing.T) {
	r := NewReport()
	r.Degraded("detect", 2, "", "no panel candidates")
	r.Record("decode", 0, "", services.Wrap(services.ErrDecode, "decode", "", "truncated", nil))
	r.Record("ocr", 2, "p002-r00", services.Wrap(services.ErrRecognition, "ocr", "", "timeout", nil))
	r.Add(Diagnostic{Kind: services.CategoryConfiguration, Stage: "setup", Page: NoPage, Message: "ocr disabled"})
	r.Record("ocr", 2, "p002-r00", nil)

	items := r.Items()
	if len(items) != 4 {
		t.Fatalf("unexpected count: got %d want 4", len(items))
	}
	order := make([]string, len(items))
	for i, d := range items {
		order[i] = fmt.Sprintf("%d/%s", d.Page, d.Stage)
	}
	if got := fmt.Sprint(order); got != "[-1/setup 0/decode 2/detect 2/ocr]" {
		t.Fatalf("unexpected order: got %s", got)
	}
	if r.Count(services.CategoryCollaborator) != 2 {
		t.Fatalf("unexpected collaborator count: got %d", r.Count(services.CategoryCollaborator))
	}
	if got := items[0].String(); got != "[configuration] setup run: ocr disabled" {
		t.Fatalf("unexpected string: got %q", got)
	}
}

func TestReportConcurrentAdds(t *testing.T) {
	r := NewReport()
	var wg sync.WaitGroup
	for page := 0; page < 16; page++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				r.Degraded("detect", page, "", "attempt %d", i)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 160 {
		t.Fatalf("unexpected count: got %d want 160", r.Len())
	}

	other := NewReport()
	other.Merge(r)
	other.Merge(other)
	if other.Len() != 160 {
		t.Fatalf("unexpected merged count: got %d want 160", other.Len())
	}
}
