// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// ActivityRecord is an immutable snapshot of one member's measured activity.
// Handles are case-sensitive for storage and case-insensitive for lookup.
type ActivityRecord struct {
	Handle        string `json:"handle"`
	DisplayName   string `json:"display_name,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	RoleTags      string `json:"role_tags,omitempty"` // comma separated, e.g. "Team Lead, Artist"
	PostsCount    int64  `json:"posts_count"`
	LikesTotal    int64  `json:"likes_total"`
	RepliesTotal  int64  `json:"replies_total"`
	RetweetsTotal int64  `json:"retweets_total"`
	QuotesTotal   int64  `json:"quotes_total"`
	ViewsTotal    int64  `json:"views_total"`
}

// Roles splits RoleTags into trimmed, non-empty role names.
func (r ActivityRecord) Roles() []string {
	if strings.TrimSpace(r.RoleTags) == "" {
		return nil
	}
	parts := strings.Split(r.RoleTags, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}

// MatchesHandle reports whether handle refers to this record, ignoring case.
func (r ActivityRecord) MatchesHandle(handle string) bool {
	return strings.EqualFold(r.Handle, handle)
}

// ScoredRecord is an ActivityRecord plus its Magician Score for one batch.
// The score is only meaningful relative to the batch it was computed against.
type ScoredRecord struct {
	ActivityRecord
	MagicianScore float64 `json:"magician_score"`
}

// RankedRecord is a ScoredRecord positioned in a sorted view.
type RankedRecord struct {
	ScoredRecord
	StableRank int `json:"stable_rank"`
}

// Valentine is a short note sent from one member to another.
type Valentine struct {
	NoteID  string    `json:"note_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}
