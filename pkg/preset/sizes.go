package preset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alde/glassmap/pkg/glassmap"
)

// SizeRange is an inclusive run of map sizes taken every Step pixels.
type SizeRange struct {
	Start int
	End   int
	Step  int
}

// ParseSizes parses a size list like "64,128-256:64,512" into sorted,
// de-duplicated map edges. A range without a step walks every pixel.
func ParseSizes(sizeStr string) ([]int, error) {
	ranges, err := ParseSizeRanges(sizeStr)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var sizes []int
	for _, r := range ranges {
		for s := r.Start; s <= r.End; s += r.Step {
			if !seen[s] {
				seen[s] = true
				sizes = append(sizes, s)
			}
		}
	}
	sort.Ints(sizes)
	return sizes, nil
}

// ParseSizeRanges parses the size list into its ranges without expanding them.
func ParseSizeRanges(sizeStr string) ([]SizeRange, error) {
	var ranges []SizeRange

	for _, part := range strings.Split(sizeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		step := 1
		if body, stepStr, ok := strings.Cut(part, ":"); ok {
			var err error
			step, err = strconv.Atoi(strings.TrimSpace(stepStr))
			if err != nil || step < 1 {
				return nil, fmt.Errorf("invalid step: %s", stepStr)
			}
			part = strings.TrimSpace(body)
		}

		var r SizeRange
		if startStr, endStr, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(startStr))
			if err != nil {
				return nil, fmt.Errorf("invalid start size: %s", startStr)
			}
			end, err := strconv.Atoi(strings.TrimSpace(endStr))
			if err != nil {
				return nil, fmt.Errorf("invalid end size: %s", endStr)
			}
			if start > end {
				return nil, fmt.Errorf("start size (%d) cannot be greater than end size (%d)", start, end)
			}
			r = SizeRange{Start: start, End: end, Step: step}
		} else {
			size, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid size: %s", part)
			}
			r = SizeRange{Start: size, End: size, Step: step}
		}

		if r.Start < 1 || r.End > glassmap.MaxSize {
			return nil, fmt.Errorf("size range %s outside 1-%d: %w", r, glassmap.MaxSize, glassmap.ErrInvalidSize)
		}
		ranges = append(ranges, r)
	}

	if len(ranges) == 0 {
		return nil, fmt.Errorf("no sizes in %q: %w", sizeStr, glassmap.ErrInvalidSize)
	}
	return ranges, nil
}

// String returns the range in the form accepted by ParseSizes
func (r SizeRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	if r.Step == 1 {
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
	return fmt.Sprintf("%d-%d:%d", r.Start, r.End, r.Step)
}
