// Package scoring computes the Magician Score from raw activity counts.
//
// The score blends three log-compressed components (reach, quality,
// consistency) normalized against the maxima of the batch being scored, then
// applies a saturating activity bonus. Scores are only comparable within the
// batch they were computed from.
package scoring

import (
	"math"

	"github.com/okian/magicboard/internal/domain/model"
)

// Component weights and score shape.
const (
	reachWeight       = 0.45
	qualityWeight     = 0.40
	consistencyWeight = 0.15

	replyMultiplier    = 2
	activitySaturation = 8 // posts needed for the full activity bonus

	baseShare     = 0.85
	activityShare = 0.15

	minScoreValue = 0
	maxScoreValue = 100
)

// NormalizationContext holds the batch-wide component maxima.
type NormalizationContext struct {
	MaxReach       float64 `json:"max_reach"`
	MaxQuality     float64 `json:"max_quality"`
	MaxConsistency float64 `json:"max_consistency"`
}

type components struct {
	reach       float64
	quality     float64
	consistency float64
}

// nonNegative treats negative counts like missing ones.
func nonNegative(v int64) float64 {
	if v < 0 {
		return 0
	}
	return float64(v)
}

func componentsOf(r *model.ActivityRecord) components {
	likes := nonNegative(r.LikesTotal)
	replies := nonNegative(r.RepliesTotal)
	return components{
		reach:       math.Log1p(nonNegative(r.ViewsTotal)),
		quality:     math.Log1p(likes + replyMultiplier*replies),
		consistency: math.Log1p(nonNegative(r.PostsCount)),
	}
}

// NewNormalizationContext computes the component maxima over records.
// An empty batch yields a zero context.
func NewNormalizationContext(records []model.ActivityRecord) NormalizationContext {
	var nctx NormalizationContext
	for i := range records {
		c := componentsOf(&records[i])
		nctx.MaxReach = math.Max(nctx.MaxReach, c.reach)
		nctx.MaxQuality = math.Max(nctx.MaxQuality, c.quality)
		nctx.MaxConsistency = math.Max(nctx.MaxConsistency, c.consistency)
	}
	return nctx
}

// ComputeScores scores every record against the maxima of the whole batch.
// Output order matches input order.
func ComputeScores(records []model.ActivityRecord) []model.ScoredRecord {
	out := make([]model.ScoredRecord, 0, len(records))
	if len(records) == 0 {
		return out
	}
	nctx := NewNormalizationContext(records)
	for i := range records {
		out = append(out, scoreNormalized(&records[i], nctx))
	}
	return out
}

// ComputeSingleScore scores one record outside a batch pass.
//
// With a non-nil nctx the record is normalized exactly as ComputeScores would
// against a batch with those maxima. With a nil nctx the raw, un-normalized
// components feed the weighted sum directly; such scores are not comparable
// with normalized ones and must never be ranked alongside them. Prefer
// passing the context of the latest full batch.
func ComputeSingleScore(rec model.ActivityRecord, nctx *NormalizationContext) model.ScoredRecord {
	if nctx != nil {
		return scoreNormalized(&rec, *nctx)
	}
	c := componentsOf(&rec)
	base := reachWeight*c.reach + qualityWeight*c.quality + consistencyWeight*c.consistency
	return model.ScoredRecord{
		ActivityRecord: rec,
		MagicianScore:  finalize(base, rec.PostsCount),
	}
}

func scoreNormalized(rec *model.ActivityRecord, nctx NormalizationContext) model.ScoredRecord {
	c := componentsOf(rec)
	base := reachWeight*normalize(c.reach, nctx.MaxReach) +
		qualityWeight*normalize(c.quality, nctx.MaxQuality) +
		consistencyWeight*normalize(c.consistency, nctx.MaxConsistency)
	return model.ScoredRecord{
		ActivityRecord: *rec,
		MagicianScore:  finalize(base, rec.PostsCount),
	}
}

// normalize maps v into [0,1] by its batch max; a zero max yields zero.
func normalize(v, maxV float64) float64 {
	if maxV == 0 {
		return 0
	}
	return v / maxV
}

// activityBonus saturates at 1 once posts reaches activitySaturation.
func activityBonus(posts int64) float64 {
	return math.Min(1, nonNegative(posts)/activitySaturation)
}

func finalize(base float64, posts int64) float64 {
	raw := maxScoreValue * (baseShare*base + activityShare*base*activityBonus(posts))
	raw = math.Max(minScoreValue, math.Min(maxScoreValue, raw))
	return RoundTenth(raw)
}

// RoundTenth rounds x to one decimal place, halves away from zero.
func RoundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
