package segment

import (
	"sort"
	"strings"
)

// DefaultConfidenceThreshold drops recognition noise while keeping most
// legitimate words.
const DefaultConfidenceThreshold = 0.5

// lineOverlap is the fraction of the smaller height two boxes must share
// vertically to count as the same line.
const lineOverlap = 0.5

// Normalize filters raw OCR segments and sorts the survivors into natural
// reading order. Entries at or below the confidence threshold are dropped,
// then entries whose text trims to empty, then the remainder is ordered
// line-by-line top-to-bottom and left-to-right within a line. Ties keep the
// original detection order. Normalize is idempotent for a fixed threshold.
func Normalize(raw []Segment, threshold float64) Sequence {
	kept := make(Sequence, 0, len(raw))
	for _, seg := range raw {
		if seg.Confidence <= threshold {
			continue
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		seg.Text = text
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return kept
	}

	// Order by vertical position first so line grouping can walk top to
	// bottom, then bucket into lines and order each line left to right.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Bounds.Y < kept[j].Bounds.Y
	})

	out := make(Sequence, 0, len(kept))
	line := Sequence{kept[0]}
	for _, seg := range kept[1:] {
		if sameLine(line, seg) {
			line = append(line, seg)
			continue
		}
		out = append(out, sortLine(line)...)
		line = Sequence{seg}
	}
	out = append(out, sortLine(line)...)
	return out
}

// sameLine reports whether seg's vertical range overlaps the current line's
// by more than the tolerance. The line's range grows as members are added so
// slightly staggered boxes on one visual line stay together.
func sameLine(line Sequence, seg Segment) bool {
	top, bottom := line[0].Bounds.Y, line[0].Bounds.Y+line[0].Bounds.Height
	for _, s := range line[1:] {
		if s.Bounds.Y < top {
			top = s.Bounds.Y
		}
		if b := s.Bounds.Y + s.Bounds.Height; b > bottom {
			bottom = b
		}
	}
	segTop, segBottom := seg.Bounds.Y, seg.Bounds.Y+seg.Bounds.Height
	overlap := minFloat(bottom, segBottom) - maxFloat(top, segTop)
	if overlap <= 0 {
		return false
	}
	smaller := minFloat(bottom-top, segBottom-segTop)
	if smaller <= 0 {
		return false
	}
	return overlap/smaller > lineOverlap
}

func sortLine(line Sequence) Sequence {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Bounds.X < line[j].Bounds.X
	})
	return line
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
