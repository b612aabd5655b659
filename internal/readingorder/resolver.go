package readingorder

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// Config holds configuration for reading order resolution
type Config struct {
	// Direction is the horizontal reading direction within a row.
	Direction Direction

	// IoUThreshold suppresses the lower-ranked of two candidates whose
	// intersection-over-union reaches it. Default: 0.6
	IoUThreshold float64

	// RowTolerance is the maximum vertical-center distance, as a fraction of
	// page height, for two panels to share a row. Default: 0.05
	RowTolerance float64

	// SpanningThreshold is the minimum width ratio for a panel to be treated
	// as a full-width splash. Default: 0.9
	SpanningThreshold float64

	// MinRetainedArea is the fraction of its original area a clipped panel
	// must keep to stay accepted. Default: 0.1
	MinRetainedArea float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Direction:         LeftToRight,
		IoUThreshold:      0.6,
		RowTolerance:      0.05,
		SpanningThreshold: 0.9,
		MinRetainedArea:   0.1,
	}
}

// Result holds the outcome of resolving one page.
type Result struct {
	// Accepted panels in reading order; Order runs 0..len-1.
	Accepted []scene.PanelRegion
	// Rejected candidates sorted by ID, each with a Reason.
	Rejected []scene.PanelRegion
}

// All returns accepted then rejected regions.
func (r Result) All() []scene.PanelRegion {
	out := make([]scene.PanelRegion, 0, len(r.Accepted)+len(r.Rejected))
	out = append(out, r.Accepted...)
	return append(out, r.Rejected...)
}

// Resolver assigns reading order to panel candidates.
type Resolver struct {
	config Config
}

// NewResolver creates a resolver with default configuration.
func NewResolver() *Resolver {
	return &Resolver{config: DefaultConfig()}
}

// NewResolverWithConfig creates a resolver with custom configuration.
func NewResolverWithConfig(config Config) *Resolver {
	return &Resolver{config: config}
}

// Config returns the resolver configuration.
func (r *Resolver) Config() Config {
	return r.config
}

// Resolve accepts, orders or rejects every candidate of page. Candidates are
// copied; the input slice is not modified. Candidates from another page or
// with duplicate IDs violate the detector contract and fail the page.
func (r *Resolver) Resolve(page scene.Page, candidates []scene.PanelRegion) (Result, error) {
	regions := make([]scene.PanelRegion, len(candidates))
	copy(regions, candidates)

	seen := make(map[scene.PanelID]struct{}, len(regions))
	for _, region := range regions {
		if region.PageIndex != page.Index {
			return Result{}, services.Wrap(services.ErrStructuralIntegrity, "reading_order", "resolve",
				fmt.Sprintf("candidate %s belongs to page %d, not %d", region.ID, region.PageIndex, page.Index), nil)
		}
		if _, dup := seen[region.ID]; dup {
			return Result{}, services.Wrap(services.ErrStructuralIntegrity, "reading_order", "resolve",
				fmt.Sprintf("duplicate candidate id %s", region.ID), nil)
		}
		seen[region.ID] = struct{}{}
	}

	var result Result
	kept := r.suppress(regions, &result)
	rows := r.rows(kept, page.Bounds())

	order := 0
	for _, row := range rows {
		for _, region := range row {
			region.Order = order
			region.Status = scene.StatusAccepted
			region.Reason = ""
			result.Accepted = append(result.Accepted, *region)
			order++
		}
	}
	slices.SortFunc(result.Rejected, func(a, b scene.PanelRegion) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// suppress applies IoU suppression and clipping in rank order and returns
// the survivors. Losers are appended to result.Rejected.
func (r *Resolver) suppress(regions []scene.PanelRegion, result *Result) []*scene.PanelRegion {
	ranked := make([]*scene.PanelRegion, 0, len(regions))
	for i := range regions {
		region := &regions[i]
		region.Effective = region.Box
		if region.Box.IsEmpty() {
			result.Rejected = append(result.Rejected, reject(*region, "empty box"))
			continue
		}
		ranked = append(ranked, region)
	}
	slices.SortStableFunc(ranked, rank)

	kept := make([]*scene.PanelRegion, 0, len(ranked))
	for _, region := range ranked {
		if winner, iou := r.suppressor(region, kept); winner != nil {
			result.Rejected = append(result.Rejected,
				reject(*region, fmt.Sprintf("suppressed by %s (IoU %.2f)", winner.ID, iou)))
			continue
		}
		effective := region.Box
		var clippedBy *scene.PanelRegion
		for _, k := range kept {
			if effective.Overlaps(k.Effective) {
				effective = effective.Subtract(k.Effective)
				clippedBy = k
			}
		}
		if clippedBy != nil && (effective.IsEmpty() || effective.Area() < r.config.MinRetainedArea*region.Box.Area()) {
			result.Rejected = append(result.Rejected, reject(*region, fmt.Sprintf("covered by %s", clippedBy.ID)))
			continue
		}
		region.Effective = effective
		kept = append(kept, region)
	}
	return kept
}

func (r *Resolver) suppressor(region *scene.PanelRegion, kept []*scene.PanelRegion) (*scene.PanelRegion, float64) {
	for _, k := range kept {
		if iou := region.Box.IoU(k.Box); iou >= r.config.IoUThreshold {
			return k, iou
		}
	}
	return nil, 0
}

// rank orders candidates by confidence, then area, then ID.
func rank(a, b *scene.PanelRegion) int {
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Box.Area(), a.Box.Area()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func reject(region scene.PanelRegion, reason string) scene.PanelRegion {
	region.Status = scene.StatusRejected
	region.Order = -1
	region.Reason = reason
	return region
}

type row struct {
	members  []*scene.PanelRegion
	spanning bool
	sumY     float64
}

func (w *row) center() float64 {
	return w.sumY / float64(len(w.members))
}

func (w *row) top() float64 {
	top := math.Inf(1)
	for _, m := range w.members {
		top = math.Min(top, m.Effective.Top())
	}
	return top
}

// rows groups panels into reading rows, each sorted horizontally, and
// returns the rows top to bottom.
func (r *Resolver) rows(regions []*scene.PanelRegion, bounds geometry.Box) [][]*scene.PanelRegion {
	tol := r.config.RowTolerance * bounds.Height
	spanning := make(map[scene.PanelID]bool)
	for _, region := range regions {
		if region.Effective.Width >= r.config.SpanningThreshold*bounds.Width {
			spanning[region.ID] = true
		}
	}

	var bands []*row
	for {
		var rest []*scene.PanelRegion
		for _, region := range regions {
			if !spanning[region.ID] {
				rest = append(rest, region)
			}
		}
		bands = cluster(rest, tol)

		changed := false
		for _, region := range rest {
			covered := 0
			for _, band := range bands {
				if c := band.center(); c >= region.Effective.Top() && c <= region.Effective.Bottom() {
					covered++
				}
			}
			if covered >= 2 {
				spanning[region.ID] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, region := range regions {
		if spanning[region.ID] {
			bands = append(bands, &row{members: []*scene.PanelRegion{region}, spanning: true})
		}
	}
	for _, band := range bands {
		slices.SortStableFunc(band.members, r.compareInRow)
	}
	slices.SortStableFunc(bands, func(a, b *row) int {
		if c := cmp.Compare(a.top(), b.top()); c != 0 {
			return c
		}
		if a.spanning != b.spanning {
			if a.spanning {
				return -1
			}
			return 1
		}
		return r.compareInRow(a.members[0], b.members[0])
	})

	out := make([][]*scene.PanelRegion, len(bands))
	for i, band := range bands {
		out[i] = band.members
	}
	return out
}

// cluster assigns panels to rows by vertical center, scanning top to bottom
// and joining the current row while within tolerance of its mean center.
func cluster(regions []*scene.PanelRegion, tol float64) []*row {
	sorted := slices.Clone(regions)
	slices.SortStableFunc(sorted, func(a, b *scene.PanelRegion) int {
		if c := cmp.Compare(a.Effective.Center().Y, b.Effective.Center().Y); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	var bands []*row
	for _, region := range sorted {
		cy := region.Effective.Center().Y
		if n := len(bands); n > 0 && math.Abs(cy-bands[n-1].center()) <= tol {
			bands[n-1].members = append(bands[n-1].members, region)
			bands[n-1].sumY += cy
			continue
		}
		bands = append(bands, &row{members: []*scene.PanelRegion{region}, sumY: cy})
	}
	return bands
}

// compareInRow orders two panels of the same row.
func (r *Resolver) compareInRow(a, b *scene.PanelRegion) int {
	if c := CompareInRow(r.config.Direction, a.Effective, b.Effective); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareInRow orders two boxes that share a reading row. Boxes whose
// horizontal ranges overlap are stacked, so they read top edge first, then
// left edge; otherwise the reading direction decides.
func CompareInRow(dir Direction, a, b geometry.Box) int {
	if a.HorizontalOverlap(b) > 0 {
		if c := cmp.Compare(a.Top(), b.Top()); c != 0 {
			return c
		}
		return cmp.Compare(a.Left(), b.Left())
	}
	if dir == RightToLeft {
		return cmp.Compare(b.Right(), a.Right())
	}
	return cmp.Compare(a.Left(), b.Left())
}
