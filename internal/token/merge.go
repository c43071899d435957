package token

import (
	"sort"
	"strings"

	"plansift/internal/domain"
)

// iouDuplicateThreshold is the overlap above which two tokens with
// equal or contained text are the same printed word seen twice.
const iouDuplicateThreshold = 0.5

// Merge unifies tokens from multiple sources. Tokens are ordered by source
// priority (vector > model > ocr, stable within a source); a token is
// dropped as a duplicate of an earlier-kept one when their boxes overlap
// with IoU above 0.5 and the texts are equal or one is a case-insensitive,
// trimmed substring of the other. The higher-priority token always wins.
func Merge(tokens []domain.TextToken) []domain.TextToken {
	if len(tokens) <= 1 {
		return tokens
	}

	ordered := make([]domain.TextToken, len(tokens))
	copy(ordered, tokens)
	sort.SliceStable(ordered, func(i, j int) bool {
		return domain.SourcePriority[ordered[i].Source] < domain.SourcePriority[ordered[j].Source]
	})

	kept := make([]domain.TextToken, 0, len(ordered))
	for _, candidate := range ordered {
		dup := false
		for _, existing := range kept {
			if isDuplicate(existing, candidate) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func isDuplicate(kept, candidate domain.TextToken) bool {
	if kept.BBox.IoU(candidate.BBox) <= iouDuplicateThreshold {
		return false
	}
	return textsOverlap(kept.Text, candidate.Text)
}

// textsOverlap reports whether two token texts are equal or one contains
// the other, after trimming and case folding.
func textsOverlap(a, b string) bool {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
