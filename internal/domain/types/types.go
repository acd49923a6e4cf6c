// Package types contains the read shapes returned to API and CLI callers.
package types

import "github.com/okian/magicboard/internal/domain/rarity"

// Entry represents one leaderboard row.
type Entry struct {
	Rank          int          `json:"rank"`
	Handle        string       `json:"handle"`
	DisplayName   string       `json:"display_name,omitempty"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	RoleTags      string       `json:"role_tags,omitempty"`
	MagicianScore float64      `json:"magician_score"`
	PostsCount    int64        `json:"posts_count"`
	LikesTotal    int64        `json:"likes_total"`
	RepliesTotal  int64        `json:"replies_total"`
	RetweetsTotal int64        `json:"retweets_total"`
	QuotesTotal   int64        `json:"quotes_total"`
	ViewsTotal    int64        `json:"views_total"`
	Tier          rarity.Tier  `json:"tier"`
	Style         rarity.Style `json:"style"`
}

// LeaderboardPage is one page of a sorted, optionally filtered leaderboard.
type LeaderboardPage struct {
	Sort       string  `json:"sort"`
	Query      string  `json:"query,omitempty"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
	TotalCount int     `json:"total_count"`
	Entries    []Entry `json:"entries"`
}

// Card is the data behind a member's shareable profile card.
type Card struct {
	Entry
	TotalMembers int     `json:"total_members"`
	Percentile   float64 `json:"percentile"` // top X%
}
