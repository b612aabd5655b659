package readingorder

import (
	"fmt"
	"strings"
)

// Direction indicates the horizontal reading direction of a page.
type Direction int

const (
	// LeftToRight is the Western comic convention.
	LeftToRight Direction = iota
	// RightToLeft is the manga convention.
	RightToLeft
)

// String returns a string representation of the reading direction
func (d Direction) String() string {
	switch d {
	case RightToLeft:
		return "rtl"
	default:
		return "ltr"
	}
}

// ParseDirection accepts "ltr", "rtl" and the aliases "western" and "manga".
func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "ltr", "western", "left_to_right":
		return LeftToRight, nil
	case "rtl", "manga", "right_to_left":
		return RightToLeft, nil
	default:
		return LeftToRight, fmt.Errorf("unknown reading direction %q", value)
	}
}
