// Package entities contains core domain data structures.
package entities

import (
	"errors"
	"fmt"
)

// DatePrecision identifies which variant of a TemporalValue is populated.
type DatePrecision string

const (
	// PrecisionExact is a fully specified story date (year, optionally month/day).
	PrecisionExact DatePrecision = "exact"
	// PrecisionYearOnly is a known year with no finer detail.
	PrecisionYearOnly DatePrecision = "year_only"
	// PrecisionApproximate is a qualitative label with an optional anchor year.
	PrecisionApproximate DatePrecision = "approximate"
	// PrecisionRelative is defined only in terms of another event's resolved
	// position plus an offset in years.
	PrecisionRelative DatePrecision = "relative"
)

// Direction says which side of the reference event a relative date falls on.
type Direction string

const (
	DirectionAfter  Direction = "after"
	DirectionBefore Direction = "before"
)

// TemporalValue is a tagged representation of a point in story time.
// Exactly one variant is populated, selected by Precision. The relative
// variant serializes its reference by event ID, never by resolved anchor,
// so export/import preserves relative semantics.
type TemporalValue struct {
	Precision DatePrecision `json:"precision"`

	// Exact / year_only.
	Year  int64 `json:"year,omitempty"`
	Month int   `json:"month,omitempty"`
	Day   int   `json:"day,omitempty"`

	// Approximate.
	Label      string `json:"label,omitempty"`
	AnchorYear *int64 `json:"anchor_year,omitempty"`

	// Relative.
	RefEventID  string    `json:"ref_event_id,omitempty"`
	OffsetYears int64     `json:"offset_years,omitempty"`
	Direction   Direction `json:"direction,omitempty"`
}

// NewExact returns an exact temporal value. Month and day may be zero for a
// date known only to the year but still treated as exact.
func NewExact(year int64, month, day int) TemporalValue {
	return TemporalValue{Precision: PrecisionExact, Year: year, Month: month, Day: day}
}

// NewYearOnly returns a year-only temporal value.
func NewYearOnly(year int64) TemporalValue {
	return TemporalValue{Precision: PrecisionYearOnly, Year: year}
}

// NewApproximate returns an approximate temporal value. A nil anchor year
// places the value in the unknown bucket for ordering and range queries.
func NewApproximate(label string, anchorYear *int64) TemporalValue {
	return TemporalValue{Precision: PrecisionApproximate, Label: label, AnchorYear: anchorYear}
}

// NewRelative returns a temporal value positioned offsetYears after or before
// the referenced event.
func NewRelative(refEventID string, offsetYears int64, dir Direction) TemporalValue {
	return TemporalValue{
		Precision:   PrecisionRelative,
		RefEventID:  refEventID,
		OffsetYears: offsetYears,
		Direction:   dir,
	}
}

// SignedOffset folds the direction into a signed year offset.
func (tv TemporalValue) SignedOffset() int64 {
	if tv.Direction == DirectionBefore {
		return -tv.OffsetYears
	}
	return tv.OffsetYears
}

// Validate checks structural consistency of the value itself. Reference
// existence and cycle safety are the chronology service's responsibility.
func (tv TemporalValue) Validate() error {
	switch tv.Precision {
	case PrecisionExact:
		if tv.Month < 0 || tv.Month > 12 {
			return fmt.Errorf("invalid month %d", tv.Month)
		}
		if tv.Day < 0 || tv.Day > 31 {
			return fmt.Errorf("invalid day %d", tv.Day)
		}
		if tv.Month == 0 && tv.Day != 0 {
			return errors.New("day given without month")
		}
		return nil
	case PrecisionYearOnly:
		return nil
	case PrecisionApproximate:
		if tv.Label == "" {
			return errors.New("approximate date requires a label")
		}
		return nil
	case PrecisionRelative:
		if tv.RefEventID == "" {
			return errors.New("relative date requires a reference event")
		}
		if tv.OffsetYears < 0 {
			return errors.New("relative offset must be non-negative (use direction)")
		}
		if tv.Direction != DirectionAfter && tv.Direction != DirectionBefore {
			return fmt.Errorf("invalid direction %q", tv.Direction)
		}
		return nil
	default:
		return fmt.Errorf("invalid date precision %q", tv.Precision)
	}
}

// String renders a human-readable form of the value.
func (tv TemporalValue) String() string {
	switch tv.Precision {
	case PrecisionExact:
		if tv.Month == 0 {
			return fmt.Sprintf("%d", tv.Year)
		}
		if tv.Day == 0 {
			return fmt.Sprintf("%d-%02d", tv.Year, tv.Month)
		}
		return fmt.Sprintf("%d-%02d-%02d", tv.Year, tv.Month, tv.Day)
	case PrecisionYearOnly:
		return fmt.Sprintf("year %d", tv.Year)
	case PrecisionApproximate:
		if tv.AnchorYear != nil {
			return fmt.Sprintf("%s (~%d)", tv.Label, *tv.AnchorYear)
		}
		return tv.Label
	case PrecisionRelative:
		return fmt.Sprintf("%d years %s %s", tv.OffsetYears, tv.Direction, tv.RefEventID)
	default:
		return string(tv.Precision)
	}
}

// PrecisionRank orders precision levels for equal-anchor tie-breaking:
// exact before year_only before approximate before resolved relative,
// with unknown anchors grouped after everything resolvable.
type PrecisionRank int8

const (
	RankExact PrecisionRank = iota
	RankYearOnly
	RankApproximate
	RankRelative
	RankUnknown
)

// Rank returns the tie-break rank for a value of this precision once resolved.
func (tv TemporalValue) Rank() PrecisionRank {
	switch tv.Precision {
	case PrecisionExact:
		return RankExact
	case PrecisionYearOnly:
		return RankYearOnly
	case PrecisionApproximate:
		return RankApproximate
	case PrecisionRelative:
		return RankRelative
	default:
		return RankUnknown
	}
}

// Anchor is the comparable point-in-time computed for a temporal value.
// Sub encodes month/day ordinal position within the year for exact dates
// (month*100+day, monotone within a year) and is zero otherwise, so every
// coarser precision compares as the start of its implied period.
//
// Unknown anchors sort after all known ones, grouped together in event
// creation order (Seq). That order is explicitly not chronological; it is a
// documented limitation of sorting events whose position cannot be resolved.
type Anchor struct {
	Known bool          `json:"known"`
	Year  int64         `json:"year"`
	Sub   int32         `json:"sub"`
	Rank  PrecisionRank `json:"rank"`
	Seq   int64         `json:"seq"`
}

// UnknownAnchor returns the anchor used for unresolvable values.
func UnknownAnchor(seq int64) Anchor {
	return Anchor{Known: false, Rank: RankUnknown, Seq: seq}
}

// Compare totally orders anchors per the tie-break policy. It returns a
// negative value if a sorts before b, zero if equal, positive otherwise.
func (a Anchor) Compare(b Anchor) int {
	if a.Known != b.Known {
		if a.Known {
			return -1
		}
		return 1
	}
	if !a.Known {
		return cmpInt64(a.Seq, b.Seq)
	}
	if c := cmpInt64(a.Year, b.Year); c != 0 {
		return c
	}
	if a.Sub != b.Sub {
		if a.Sub < b.Sub {
			return -1
		}
		return 1
	}
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return -1
		}
		return 1
	}
	return cmpInt64(a.Seq, b.Seq)
}

// InYearRange reports whether the anchor falls inside the inclusive year
// bounds; either bound may be nil (open). Unknown anchors never match.
func (a Anchor) InYearRange(lower, upper *int64) bool {
	if !a.Known {
		return false
	}
	if lower != nil && a.Year < *lower {
		return false
	}
	if upper != nil && a.Year > *upper {
		return false
	}
	return true
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
