// Package ranking orders scored records, assigns stable ranks, and provides
// search filtering and pagination over the ranked view.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/magicboard/internal/domain/model"
)

// SortKey selects the field a ranking is ordered by.
type SortKey string

// Supported sort keys. The set is closed; UI controls must map onto it.
const (
	SortByScore    SortKey = "score"
	SortByPosts    SortKey = "posts"
	SortByViews    SortKey = "views"
	SortByLikes    SortKey = "likes"
	SortByReplies  SortKey = "replies"
	SortByRetweets SortKey = "retweets"
	SortByQuotes   SortKey = "quotes"
)

// SortKeys lists every valid key in display order.
func SortKeys() []SortKey {
	return []SortKey{SortByScore, SortByPosts, SortByViews, SortByLikes, SortByReplies, SortByRetweets, SortByQuotes}
}

// Valid reports whether k is one of the supported keys.
func (k SortKey) Valid() bool {
	switch k {
	case SortByScore, SortByPosts, SortByViews, SortByLikes, SortByReplies, SortByRetweets, SortByQuotes:
		return true
	default:
		return false
	}
}

// ParseSortKey converts s into a SortKey. An empty string selects score.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortByScore, nil
	}
	k := SortKey(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
	return k, nil
}

// value extracts the sort field of r. Unknown keys read as 0.
func (k SortKey) value(r *model.ScoredRecord) float64 {
	switch k {
	case SortByScore:
		return r.MagicianScore
	case SortByPosts:
		return float64(r.PostsCount)
	case SortByViews:
		return float64(r.ViewsTotal)
	case SortByLikes:
		return float64(r.LikesTotal)
	case SortByReplies:
		return float64(r.RepliesTotal)
	case SortByRetweets:
		return float64(r.RetweetsTotal)
	case SortByQuotes:
		return float64(r.QuotesTotal)
	default:
		return 0
	}
}

// Rank sorts records by key, descending, and assigns StableRank = index+1.
// Equal keys keep their input order. The input slice is not modified.
func Rank(records []model.ScoredRecord, key SortKey) []model.RankedRecord {
	sorted := make([]model.ScoredRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key.value(&sorted[i]) > key.value(&sorted[j])
	})

	ranked := make([]model.RankedRecord, len(sorted))
	for i := range sorted {
		ranked[i] = model.RankedRecord{ScoredRecord: sorted[i], StableRank: i + 1}
	}
	return ranked
}

// Filter keeps records whose display name or handle contains query,
// ignoring case. A blank query returns ranked unchanged. Ranks are never
// reassigned, so a filtered view may show gaps (3, 17, 42).
func Filter(ranked []model.RankedRecord, query string) []model.RankedRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ranked
	}
	out := make([]model.RankedRecord, 0, len(ranked))
	for _, r := range ranked {
		if strings.Contains(strings.ToLower(r.DisplayName), q) || strings.Contains(strings.ToLower(r.Handle), q) {
			out = append(out, r)
		}
	}
	return out
}

// TotalPages returns ceil(count/pageSize), or 0 when there is nothing to page.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage bounds a requested page to [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	default:
		return page
	}
}

// Paginate returns the 1-based page of records, i.e. the slice
// [(page-1)*pageSize, page*pageSize). Out-of-range pages yield an empty slice.
func Paginate[T any](records []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 || page-1 > len(records)/pageSize {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []T{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
