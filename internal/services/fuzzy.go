package services

import (
	"math"
	"sort"
	"strings"

	"github.com/findajob/jobboard/internal/models"
)

// CompanySimilarityThreshold is the minimum ratio for a company to be offered
// as a possible duplicate.
const CompanySimilarityThreshold = 0.75

// FindSimilarCompanies returns the companies whose normalized name ratio to
// name reaches the threshold, highest similarity first.
func FindSimilarCompanies(name string, companies []models.Company) []models.SimilarCompany {
	candidate := normalizeName(name)
	if candidate == "" {
		return []models.SimilarCompany{}
	}

	matches := make([]models.SimilarCompany, 0)
	for _, company := range companies {
		ratio := SimilarityRatio(candidate, normalizeName(company.Name))
		if ratio < CompanySimilarityThreshold {
			continue
		}
		matches = append(matches, models.SimilarCompany{
			ID:         company.ID,
			Name:       company.Name,
			Similarity: math.Round(ratio*1000) / 1000,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SimilarityRatio is the Ratcliff/Obershelp ratio 2*M/T, where M is the number
// of characters in the recursively found longest common blocks and T the total
// length of both strings. Two empty strings are identical.
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingCharacters(ra, rb)) / float64(total)
}

type matchSpan struct {
	alo, ahi, blo, bhi int
}

func matchingCharacters(a, b []rune) int {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	queue := []matchSpan{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b2j, s)
		if k == 0 {
			continue
		}
		matched += k

		if s.alo < i && s.blo < j {
			queue = append(queue, matchSpan{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, matchSpan{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the span,
// preferring the earliest i and then the earliest j on ties.
func longestMatch(a []rune, b2j map[rune][]int, s matchSpan) (int, int, int) {
	besti, bestj, bestsize := s.alo, s.blo, 0
	j2len := map[int]int{}
	for i := s.alo; i < s.ahi; i++ {
		next := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
