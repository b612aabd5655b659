package readingorder

import (
	"fmt"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// Validate checks the accepted panels of one page: orders are exactly
// 0..n-1 in slice order and effective areas are pairwise disjoint.
func Validate(accepted []scene.PanelRegion) error {
	for i, region := range accepted {
		if region.Status != scene.StatusAccepted {
			return integrity("panel %s has status %s", region.ID, region.Status)
		}
		if region.Order != i {
			return integrity("panel %s has order %d at position %d", region.ID, region.Order, i)
		}
		if region.PageIndex != accepted[0].PageIndex {
			return integrity("panel %s is on page %d, expected %d", region.ID, region.PageIndex, accepted[0].PageIndex)
		}
		for _, other := range accepted[:i] {
			if region.Effective.Overlaps(other.Effective) {
				return integrity("panels %s and %s overlap", other.ID, region.ID)
			}
		}
	}
	return nil
}

func integrity(format string, args ...any) error {
	return services.Wrap(services.ErrStructuralIntegrity, "reading_order", "validate", fmt.Sprintf(format, args...), nil)
}
