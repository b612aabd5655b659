package testsupport

import (
	"context"
	"fmt"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// MemorySource serves pre-built pages. Indexes listed in Failures fail to
// decode with a wrapped decode error.
type MemorySource struct {
	Label    string
	Pages    []scene.Page
	Failures map[int]string
}

func (s *MemorySource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}

func (s *MemorySource) Len() int { return len(s.Pages) }

func (s *MemorySource) Decode(ctx context.Context, index int) (scene.Page, error) {
	if err := ctx.Err(); err != nil {
		return scene.Page{}, err
	}
	if index < 0 || index >= len(s.Pages) {
		return scene.Page{}, services.Wrap(services.ErrNotFound, "archive", "decode", fmt.Sprintf("page %d out of range", index), nil)
	}
	if reason, ok := s.Failures[index]; ok {
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", fmt.Sprintf("page %d: %s", index, reason), nil)
	}
	page := s.Pages[index]
	page.Index = index
	return page, nil
}

func (s *MemorySource) Close() error { return nil }
