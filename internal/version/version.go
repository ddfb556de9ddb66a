// Package version handles the dotted numeric version strings reported by
// appliances, e.g. "5.9.0.21".
package version

import (
	"fmt"
	"strconv"
	"strings"
)

type Version struct {
	segments []int
	raw      string
}

// Parse parses a dotted numeric version string. At least major and minor
// components are required; any number of further numeric components is
// allowed.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("invalid version string, expect #.#[... .#], received: %q", s)
	}
	segments := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version string, expect #.#[... .#], received: %q", s)
		}
		segments[i] = n
	}
	return Version{segments: segments, raw: s}, nil
}

func (v Version) String() string {
	return v.raw
}

func (v Version) Major() int {
	return v.segments[0]
}

func (v Version) Minor() int {
	return v.segments[1]
}

// Compare orders versions component-wise. A missing component compares as
// zero, so 5.9 == 5.9.0.
func (v Version) Compare(o Version) int {
	n := max(len(v.segments), len(o.segments))
	for i := range n {
		var a, b int
		if i < len(v.segments) {
			a = v.segments[i]
		}
		if i < len(o.segments) {
			b = o.segments[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}
