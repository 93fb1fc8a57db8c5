package analyzer

// PartialRatio computes the best similarity (0-100) between the shorter
// string and any equally-sized window of the longer string. It mirrors
// the classic "partial ratio" used by fuzzy string matchers: a short
// name variant scores 100 against any title that embeds it with at most
// minor edits.
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	window := len(shorter)
	best := 0
	for start := 0; start+window <= len(longer); start++ {
		score := ratio(shorter, longer[start:start+window])
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// ratio is the plain Levenshtein similarity of two rune slices, scaled to 0-100.
func ratio(a, b []rune) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return int(float64(maxLen-dist) / float64(maxLen) * 100)
}

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
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
