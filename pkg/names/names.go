// Package names resolves user-supplied names against closed sets of known
// names and builds "did you mean" errors for the misses.
package names

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/pkg/errors"
)

// minSimilarity is the Levenshtein similarity below which no suggestion is
// made.
const minSimilarity = 0.5

// Normalize lower-cases name and turns spaces and underscores into dashes.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "-", " ", "-").Replace(name)
}

// Closest returns the candidate most similar to name, if any is similar
// enough.
func Closest(name string, candidates []string) (string, bool) {
	lev := metrics.NewLevenshtein()
	best, bestScore := "", 0.0
	for _, c := range candidates {
		if score := strutil.Similarity(Normalize(name), c, lev); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= minSimilarity
}

// Unknown wraps sentinel with the rejected name, a suggestion when one is
// close, and the sorted list of valid names.
func Unknown(sentinel error, name string, candidates []string) error {
	valid := append([]string(nil), candidates...)
	sort.Strings(valid)
	if s, ok := Closest(name, candidates); ok {
		return errors.Wrapf(sentinel, "%q (did you mean %q?)", name, s)
	}
	return errors.Wrapf(sentinel, "%q (valid: %s)", name, strings.Join(valid, ", "))
}
