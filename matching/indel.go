// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package matching

// indelRatio is the normalized insertion/deletion similarity of a and b:
// 100 * (1 - indel(a, b) / (len(a) + len(b))), where indel counts the
// insertions and deletions turning a into b. Two empty strings score 100.
func indelRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}

	dist := total - 2*lcs(ra, rb)

	return 100 * (1 - float64(dist)/float64(total))
}

// lcs returns the length of the longest common subsequence.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}

		prev, cur = cur, prev
	}

	return prev[len(b)]
}
