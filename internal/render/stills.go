package render

import (
	"context"
	"image"
	"sync"

	"motioncomic/internal/archive"
	"motioncomic/internal/raster"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// PageStills crops panel stills out of re-decoded archive pages. The most
// recently decoded page is cached, so requesting panels in timeline order
// decodes each page once.
type PageStills struct {
	src    archive.Source
	panels map[scene.PanelID]scene.PanelRegion

	mu     sync.Mutex
	page   scene.Page
	loaded bool
}

// NewPageStills indexes the accepted panels of pages.
func NewPageStills(src archive.Source, pages []scene.PageScene) *PageStills {
	panels := make(map[scene.PanelID]scene.PanelRegion)
	for _, ps := range pages {
		for _, panel := range ps.Panels {
			panels[panel.Panel.ID] = panel.Panel
		}
	}
	return &PageStills{src: src, panels: panels}
}

// Still implements StillSource. The crop covers the panel frame.
func (s *PageStills) Still(ctx context.Context, id scene.PanelID) (image.Image, error) {
	region, ok := s.panels[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "render", "still", string(id), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.page.Index != region.PageIndex {
		page, err := s.src.Decode(ctx, region.PageIndex)
		if err != nil {
			return nil, err
		}
		s.page, s.loaded = page, true
	}
	if s.page.Image == nil {
		return nil, services.Wrap(services.ErrDecode, "render", "still", string(id)+": page has no raster", nil)
	}

	box := region.Box.Clamp(s.page.Bounds())
	if box.IsEmpty() {
		return nil, services.Wrap(services.ErrStructuralIntegrity, "render", "still", string(id)+": panel outside page", nil)
	}
	return raster.Crop(s.page.Image, box.Rect().Add(s.page.Image.Bounds().Min)), nil
}
