// Package rarity maps a Magician Score, role list, and handle onto a card
// rarity tier plus the style bundle the card renderer draws it with.
package rarity

import "strings"

// Tier is a rarity classification.
type Tier string

// Tiers, from the identity override down to the lowest score band.
const (
	TierFounder   Tier = "Founder" // reserved handle override
	TierTeam      Tier = "Team"    // privileged role override
	TierMythical  Tier = "Mythical"
	TierLegendary Tier = "Legendary"
	TierEpic      Tier = "Epic"
	TierRare      Tier = "Rare"
	TierUncommon  Tier = "Uncommon"
	TierCommon    Tier = "Common"
)

// Score band lower bounds (inclusive).
const (
	mythicalMin  = 95
	legendaryMin = 80
	epicMin      = 65
	rareMin      = 50
	uncommonMin  = 21
)

// Style is presentation data for a tier. It is opaque to ranking.
type Style struct {
	Label         string  `json:"label"`
	Primary       string  `json:"primary"`
	Secondary     string  `json:"secondary"`
	Glow          string  `json:"glow"`
	GlowIntensity float64 `json:"glow_intensity"`
	Animated      bool    `json:"animated"`
}

// Result is a tier with its style.
type Result struct {
	Tier  Tier  `json:"tier"`
	Style Style `json:"style"`
}

var styles = map[Tier]Style{
	TierFounder:   {Label: "Founder", Primary: "#f5d76e", Secondary: "#8e44ad", Glow: "#fff4c2", GlowIntensity: 1.0, Animated: true},
	TierTeam:      {Label: "Team", Primary: "#00d2ff", Secondary: "#3a47d5", Glow: "#9ff3ff", GlowIntensity: 0.95, Animated: true},
	TierMythical:  {Label: "Mythical", Primary: "#ff3cac", Secondary: "#784ba0", Glow: "#ff9de2", GlowIntensity: 0.9, Animated: true},
	TierLegendary: {Label: "Legendary", Primary: "#f7971e", Secondary: "#ffd200", Glow: "#ffe29a", GlowIntensity: 0.75, Animated: true},
	TierEpic:      {Label: "Epic", Primary: "#8e2de2", Secondary: "#4a00e0", Glow: "#c39bff", GlowIntensity: 0.6},
	TierRare:      {Label: "Rare", Primary: "#2193b0", Secondary: "#6dd5ed", Glow: "#a8ecff", GlowIntensity: 0.45},
	TierUncommon:  {Label: "Uncommon", Primary: "#56ab2f", Secondary: "#a8e063", Glow: "#d4f7b0", GlowIntensity: 0.3},
	TierCommon:    {Label: "Common", Primary: "#757f9a", Secondary: "#d7dde8", Glow: "#eef1f6", GlowIntensity: 0.1},
}

// StyleFor returns the style bundle of t; unknown tiers get the Common style.
func StyleFor(t Tier) Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return styles[TierCommon]
}

// Classifier holds the override allow-lists. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	reservedHandles []string
	privilegedRoles []string
}

// NewClassifier creates a classifier with the default allow-lists,
// replaced by any options given.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		reservedHandles: []string{"magician"},
		privilegedRoles: []string{"moderator", "team"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the tier and style for a member. Rules are evaluated in
// order and the first match wins: reserved handle, privileged role, then
// score bands.
func (c *Classifier) Classify(score float64, roles []string, handle string) Result {
	t := c.tier(score, roles, handle)
	return Result{Tier: t, Style: StyleFor(t)}
}

func (c *Classifier) tier(score float64, roles []string, handle string) Tier {
	for _, h := range c.reservedHandles {
		if strings.EqualFold(h, handle) {
			return TierFounder
		}
	}
	for _, role := range roles {
		r := strings.ToLower(role)
		for _, marker := range c.privilegedRoles {
			if strings.Contains(r, marker) {
				return TierTeam
			}
		}
	}
	return TierForScore(score)
}

// TierForScore applies the score bands alone.
func TierForScore(score float64) Tier {
	switch {
	case score >= mythicalMin:
		return TierMythical
	case score >= legendaryMin:
		return TierLegendary
	case score >= epicMin:
		return TierEpic
	case score >= rareMin:
		return TierRare
	case score >= uncommonMin:
		return TierUncommon
	default:
		return TierCommon
	}
}
