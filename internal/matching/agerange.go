package matching

import (
	"strconv"
	"strings"

	"github.com/spigell/group-recommender/internal/records"
)

// IsAgeInRange reports whether age satisfies a group's age spec.
//
// Accepted forms are "" and "All Ages" (everyone), "N+" (N or older),
// "A-B" (inclusive, never matches when A > B) and a bare "N" (exactly N).
// Anything else never matches.
func IsAgeInRange(age int, spec string) bool {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == records.AllAges {
		return true
	}

	if lower, ok := strings.CutSuffix(spec, "+"); ok {
		n, ok := parseAge(lower)
		return ok && age >= n
	}

	if from, to, ok := strings.Cut(spec, "-"); ok {
		a, okA := parseAge(from)
		b, okB := parseAge(to)
		return okA && okB && a <= age && age <= b
	}

	n, ok := parseAge(spec)
	return ok && age == n
}

func parseAge(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
