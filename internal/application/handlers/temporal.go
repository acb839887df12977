package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
)

// ParseTemporalValue parses the CLI date syntax into a temporal value:
//
//	exact:Y[-M[-D]]      exact:1042-03-12, exact:1042
//	year:Y               year:-300
//	approx:Label[@Y]     approx:Early Third Age@2100, approx:The Long Dark
//	after:EVENT:N        after:3f2a…:50
//	before:EVENT:N       before:3f2a…:12
//
// Years may be negative; months and days may not be.
func ParseTemporalValue(s string) (entities.TemporalValue, error) {
	prefix, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return entities.TemporalValue{}, fmt.Errorf("invalid date %q (expected prefix:value, e.g. year:1042)", s)
	}

	switch prefix {
	case "exact":
		return parseExact(rest)
	case "year":
		year, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return entities.TemporalValue{}, fmt.Errorf("invalid year %q", rest)
		}
		return entities.NewYearOnly(year), nil
	case "approx":
		label, yearPart, hasAnchor := strings.Cut(rest, "@")
		label = strings.TrimSpace(label)
		if label == "" {
			return entities.TemporalValue{}, fmt.Errorf("approximate date needs a label")
		}
		if !hasAnchor {
			return entities.NewApproximate(label, nil), nil
		}
		year, err := strconv.ParseInt(strings.TrimSpace(yearPart), 10, 64)
		if err != nil {
			return entities.TemporalValue{}, fmt.Errorf("invalid anchor year %q", yearPart)
		}
		return entities.NewApproximate(label, &year), nil
	case "after", "before":
		eventID, offsetPart, ok := strings.Cut(rest, ":")
		if !ok || eventID == "" {
			return entities.TemporalValue{}, fmt.Errorf("relative date needs EVENT:OFFSET, got %q", rest)
		}
		offset, err := strconv.ParseInt(offsetPart, 10, 64)
		if err != nil || offset < 0 {
			return entities.TemporalValue{}, fmt.Errorf("invalid offset %q (must be a non-negative year count)", offsetPart)
		}
		dir := entities.DirectionAfter
		if prefix == "before" {
			dir = entities.DirectionBefore
		}
		return entities.NewRelative(eventID, offset, dir), nil
	default:
		return entities.TemporalValue{}, fmt.Errorf("unknown date prefix %q (valid: exact, year, approx, after, before)", prefix)
	}
}

func parseExact(rest string) (entities.TemporalValue, error) {
	// A leading minus belongs to the year, not a separator.
	negative := strings.HasPrefix(rest, "-")
	if negative {
		rest = rest[1:]
	}
	parts := strings.Split(rest, "-")
	if len(parts) == 0 || len(parts) > 3 {
		return entities.TemporalValue{}, fmt.Errorf("invalid exact date %q (expected Y, Y-M or Y-M-D)", rest)
	}

	nums := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return entities.TemporalValue{}, fmt.Errorf("invalid exact date component %q", p)
		}
		nums[i] = n
	}
	year := nums[0]
	if negative {
		year = -year
	}
	var month, day int
	if len(nums) > 1 {
		month = int(nums[1])
	}
	if len(nums) > 2 {
		day = int(nums[2])
	}

	tv := entities.NewExact(year, month, day)
	if err := tv.Validate(); err != nil {
		return entities.TemporalValue{}, err
	}
	return tv, nil
}

// FormatTemporalValue renders a temporal value in the same syntax
// ParseTemporalValue accepts.
func FormatTemporalValue(tv entities.TemporalValue) string {
	switch tv.Precision {
	case entities.PrecisionExact:
		switch {
		case tv.Day != 0:
			return fmt.Sprintf("exact:%d-%02d-%02d", tv.Year, tv.Month, tv.Day)
		case tv.Month != 0:
			return fmt.Sprintf("exact:%d-%02d", tv.Year, tv.Month)
		default:
			return fmt.Sprintf("exact:%d", tv.Year)
		}
	case entities.PrecisionYearOnly:
		return fmt.Sprintf("year:%d", tv.Year)
	case entities.PrecisionApproximate:
		if tv.AnchorYear != nil {
			return fmt.Sprintf("approx:%s@%d", tv.Label, *tv.AnchorYear)
		}
		return fmt.Sprintf("approx:%s", tv.Label)
	case entities.PrecisionRelative:
		prefix := "after"
		if tv.Direction == entities.DirectionBefore {
			prefix = "before"
		}
		return fmt.Sprintf("%s:%s:%d", prefix, tv.RefEventID, tv.OffsetYears)
	default:
		return string(tv.Precision)
	}
}

// ParseYearBound parses an optional range bound; empty means open.
func ParseYearBound(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	year, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", s)
	}
	return &year, nil
}
