// Package pathsim compares file paths as token sequences. Paths are split on
// directory separators and scored with four classic string-comparison
// techniques, each normalized to [0,1]; the overall similarity is their mean.
package pathsim

import "strings"

// Tokenize splits a file path into its components. Empty components from
// leading, trailing, or doubled separators are dropped.
func Tokenize(path string) []string {
	parts := strings.Split(path, "/")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Similarity returns the path similarity of a and b in [0,1]: the mean of the
// common-prefix, common-suffix, common-substring, and common-subsequence
// ratios of their token sequences. Two empty paths score 0.
func Similarity(a, b string) float64 {
	return TokenSimilarity(Tokenize(a), Tokenize(b))
}

// TokenSimilarity is Similarity over already tokenized paths.
func TokenSimilarity(a, b []string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	n := float64(longest)
	sum := float64(commonPrefix(a, b))/n +
		float64(commonSuffix(a, b))/n +
		float64(commonSubstring(a, b))/n +
		float64(commonSubsequence(a, b))/n
	return sum / 4
}

// commonPrefix counts shared leading tokens.
func commonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// commonSuffix counts shared trailing tokens.
func commonSuffix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

// commonSubstring returns the length of the longest run of consecutive tokens
// shared by a and b.
func commonSubstring(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}

// commonSubsequence returns the length of the longest (not necessarily
// consecutive) token subsequence shared by a and b.
func commonSubsequence(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
