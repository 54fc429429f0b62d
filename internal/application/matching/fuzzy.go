package matching

import "strings"

// minFuzzyTokenLen is the shortest token that may match approximately.
// Shorter tokens ("xl", "02") only match exactly.
const minFuzzyTokenLen = 3

// document is the searchable form of one product: the tokens of its code and
// description plus their normalized concatenation.
type document struct {
	text   string
	tokens []string
}

func newDocument(code, description string) document {
	joined := strings.TrimSpace(code + " " + description)
	return document{
		text:   normalize(joined),
		tokens: tokenize(joined),
	}
}

// fuzzyScorer rates how well a query matches a document on a 0 (perfect) to 1 scale.
type fuzzyScorer struct {
	editBudget int
}

// score averages the best per-token distance of every query token.
func (f fuzzyScorer) score(query string, queryTokens []string, doc document) float64 {
	if len(queryTokens) == 0 || len(doc.tokens) == 0 {
		return 1
	}
	if len(query) >= minFuzzyTokenLen && strings.Contains(" "+doc.text+" ", " "+query+" ") {
		return 0
	}

	var total float64
	for _, q := range queryTokens {
		best := 1.0
		for _, t := range doc.tokens {
			if s := f.tokenScore(q, t); s < best {
				best = s
				if best == 0 {
					break
				}
			}
		}
		total += best
	}
	return total / float64(len(queryTokens))
}

func (f fuzzyScorer) tokenScore(q, t string) float64 {
	if q == t {
		return 0
	}
	qr, tr := []rune(q), []rune(t)
	shorter, longer := len(qr), len(tr)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if shorter < minFuzzyTokenLen {
		return 1
	}

	// a prefix hit ("wal" against "wallet") is partial credit scaled by coverage
	if strings.HasPrefix(t, q) || strings.HasPrefix(q, t) {
		return 0.5 * (1 - float64(shorter)/float64(longer))
	}

	if longer-shorter > f.editBudget {
		return 1
	}
	d := levenshtein(qr, tr)
	if d > f.editBudget {
		return 1
	}
	return float64(d) / float64(longer)
}

// levenshtein is the two-row edit distance between rune slices.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
