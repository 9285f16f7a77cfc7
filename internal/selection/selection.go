package selection

import (
	"sort"

	"github.com/kobzarvs/qdoc/internal/delta"
)

// Region is a half-open byte range. Reversed marks the caret at Start;
// otherwise the caret sits at End.
type Region struct {
	Start    int
	End      int
	Reversed bool
}

// NewRegion builds a region from an anchor and a caret in either order.
func NewRegion(anchor, caret int) Region {
	if caret < anchor {
		return Region{Start: caret, End: anchor, Reversed: true}
	}
	return Region{Start: anchor, End: caret}
}

func (r Region) IsCaret() bool { return r.Start == r.End }

func (r Region) Len() int { return r.End - r.Start }

func (r Region) Caret() int {
	if r.Reversed {
		return r.Start
	}
	return r.End
}

func (r Region) Anchor() int {
	if r.Reversed {
		return r.End
	}
	return r.Start
}

func (r Region) Contains(off int) bool { return off >= r.Start && off < r.End }

// overlaps reports whether next (which starts at or after r) must be merged
// into r. Touching regions stay separate; identical carets merge.
func (r Region) overlaps(next Region) bool {
	if r.End > next.Start {
		return true
	}
	return r.IsCaret() && next.IsCaret() && r.Start == next.Start
}

func (r Region) merge(o Region) Region {
	return Region{Start: min(r.Start, o.Start), End: max(r.End, o.End), Reversed: r.Reversed}
}

// Selection is a sorted set of disjoint regions.
type Selection struct {
	regions []Region
}

func Caret(off int) Selection {
	return Selection{regions: []Region{{Start: off, End: off}}}
}

func New(regions ...Region) Selection {
	var s Selection
	for _, r := range regions {
		s.Add(r)
	}
	return s
}

// Add inserts r keeping the regions sorted and merging any it overlaps.
func (s *Selection) Add(r Region) {
	if r.End < r.Start {
		r = NewRegion(r.Start, r.End)
	}
	i := sort.Search(len(s.regions), func(i int) bool { return s.regions[i].Start > r.Start })
	lo, hi := i, i
	if lo > 0 && s.regions[lo-1].overlaps(r) {
		lo--
		r = s.regions[lo].merge(r)
	}
	for hi < len(s.regions) && r.overlaps(s.regions[hi]) {
		r = r.merge(s.regions[hi])
		hi++
	}
	out := make([]Region, 0, len(s.regions)-(hi-lo)+1)
	out = append(out, s.regions[:lo]...)
	out = append(out, r)
	out = append(out, s.regions[hi:]...)
	s.regions = out
}

func (s Selection) Regions() []Region {
	return append([]Region(nil), s.regions...)
}

func (s Selection) Len() int { return len(s.regions) }

func (s Selection) IsEmpty() bool { return len(s.regions) == 0 }

// IsCaret reports whether the selection is a single zero-width region.
func (s Selection) IsCaret() bool {
	return len(s.regions) == 1 && s.regions[0].IsCaret()
}

func (s Selection) MinOffset() int {
	if len(s.regions) == 0 {
		return 0
	}
	return s.regions[0].Start
}

func (s Selection) MaxOffset() int {
	if len(s.regions) == 0 {
		return 0
	}
	return s.regions[len(s.regions)-1].End
}

// CaretOffset returns the caret of the last region.
func (s Selection) CaretOffset() int {
	if len(s.regions) == 0 {
		return 0
	}
	return s.regions[len(s.regions)-1].Caret()
}

// Collapse replaces every region with a caret at its caret position.
func (s Selection) Collapse() Selection {
	var out Selection
	for _, r := range s.regions {
		out.Add(Region{Start: r.Caret(), End: r.Caret()})
	}
	return out
}

// ApplyDelta maps every region through d. after decides on which side of
// text inserted exactly at a boundary the boundary lands.
func (s Selection) ApplyDelta(d delta.Delta, after bool) Selection {
	var out Selection
	for _, r := range s.regions {
		out.Add(Region{
			Start:    d.TransformOffset(r.Start, after),
			End:      d.TransformOffset(r.End, after),
			Reversed: r.Reversed,
		})
	}
	return out
}

func (s Selection) Equal(o Selection) bool {
	if len(s.regions) != len(o.regions) {
		return false
	}
	for i := range s.regions {
		if s.regions[i] != o.regions[i] {
			return false
		}
	}
	return true
}
