package crawler

import "strings"

// keywordWeight scales the raw keyword hit ratio into the final score.
const keywordWeight = 0.7

// KeywordScorer rates a URL by how many of the configured keywords appear
// in it, case-insensitively. With no keywords every URL scores zero.
type KeywordScorer struct {
	keywords []string
}

// NewKeywordScorer builds a scorer over the given keywords. Empty and
// whitespace-only keywords are ignored.
func NewKeywordScorer(keywords []string) *KeywordScorer {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return &KeywordScorer{keywords: cleaned}
}

// Score returns keywordWeight * (matched keywords / total keywords).
func (s *KeywordScorer) Score(rawURL string) float64 {
	if len(s.keywords) == 0 {
		return 0
	}

	lower := strings.ToLower(rawURL)
	matched := 0
	for _, k := range s.keywords {
		if strings.Contains(lower, k) {
			matched++
		}
	}

	return keywordWeight * float64(matched) / float64(len(s.keywords))
}
