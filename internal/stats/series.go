// Package stats turns aggregate payloads into chart-ready series.
package stats

import (
	"strings"

	"github.com/five82/roster/internal/roster"
)

// Series is a pair of parallel label/value sequences in payload order.
type Series struct {
	Labels []string
	Values []int
}

// FromBuckets converts (category, count) pairs into a Series. It never
// returns nil slices and never fails; an empty input yields an empty
// series.
func FromBuckets(buckets []roster.Bucket) Series {
	s := Series{
		Labels: make([]string, 0, len(buckets)),
		Values: make([]int, 0, len(buckets)),
	}
	for _, b := range buckets {
		s.Labels = append(s.Labels, b.Label)
		s.Values = append(s.Values, b.Count)
	}
	return s
}

// Gender adapts the by-gender aggregate.
func Gender(st roster.Statistics) Series {
	return FromBuckets(st.StudentsByGender)
}

// BatchYear adapts the by-batch-year aggregate.
func BatchYear(st roster.Statistics) Series {
	return FromBuckets(st.StudentsByBatchYear)
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Labels)
}

// Empty reports whether the series has no points.
func (s Series) Empty() bool {
	return s.Len() == 0
}

// Total sums the non-negative values.
func (s Series) Total() int {
	total := 0
	for _, v := range s.Values {
		if v > 0 {
			total += v
		}
	}
	return total
}

// Max returns the largest value, or zero for an empty series.
func (s Series) Max() int {
	max := 0
	for _, v := range s.Values {
		if v > max {
			max = v
		}
	}
	return max
}

// Share returns value i as a fraction of Total, or zero.
func (s Series) Share(i int) float64 {
	total := s.Total()
	if total == 0 || i < 0 || i >= len(s.Values) || s.Values[i] <= 0 {
		return 0
	}
	return float64(s.Values[i]) / float64(total)
}

// Label returns label i, substituting a placeholder for blank categories.
func (s Series) Label(i int) string {
	if i < 0 || i >= len(s.Labels) {
		return ""
	}
	if strings.TrimSpace(s.Labels[i]) == "" {
		return "(unspecified)"
	}
	return s.Labels[i]
}
