package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
)

// Scoring weights. Title carries the most signal; duration metadata is
// sometimes missing on the proxy side, so it gets the smallest share.
const (
	titleWeight    = 0.50
	artistWeight   = 0.30
	durationWeight = 0.20
)

// Score computes a similarity score in [0,1] between a source track and a
// destination candidate. Pure function over the two records; the same
// inputs always produce the same score.
func Score(src, candidate services.Track, durationToleranceMS int) float64 {
	title := similarity(normalize(src.Title), normalize(candidate.Title))
	artist := artistOverlap(src.Artists, candidate.Artists)
	duration := durationCloseness(src.DurationMS, candidate.DurationMS, durationToleranceMS)

	return titleWeight*title + artistWeight*artist + durationWeight*duration
}

// normalize lowercases, strips punctuation, and collapses whitespace so
// that "Song Title (feat. X)" and "song title feat x" compare cleanly.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// similarity returns 1 - normalized Levenshtein distance between a and b.
// Distance and length are both measured in runes so multi-byte titles
// normalize the same way as ASCII ones.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with a two-row matrix.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// artistOverlap returns the fraction of source artists present (after
// normalization) in the candidate's artist set. A track with no artist
// metadata on either side contributes nothing either way.
func artistOverlap(src, candidate []string) float64 {
	if len(src) == 0 || len(candidate) == 0 {
		return 0
	}

	candidateSet := make(map[string]struct{}, len(candidate))
	for _, a := range candidate {
		candidateSet[normalize(a)] = struct{}{}
	}

	matched := 0
	for _, a := range src {
		if _, ok := candidateSet[normalize(a)]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(src))
}

// durationCloseness maps the duration delta to [0,1]: identical durations
// score 1, deltas at or past the tolerance score 0. Missing durations on
// either side score 0 rather than excluding the candidate, since duration
// metadata is unreliable.
func durationCloseness(srcMS, candidateMS, toleranceMS int) float64 {
	if srcMS <= 0 || candidateMS <= 0 {
		return 0
	}
	if toleranceMS <= 0 {
		toleranceMS = 10000
	}

	delta := srcMS - candidateMS
	if delta < 0 {
		delta = -delta
	}
	if delta >= toleranceMS {
		return 0
	}

	return 1 - float64(delta)/float64(toleranceMS)
}
