package rarity

import "strings"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithReservedHandles replaces the handles that always receive the Founder tier.
// Matching is case-insensitive; blank entries are ignored.
func WithReservedHandles(handles []string) Option {
	return func(c *Classifier) {
		if handles != nil {
			c.reservedHandles = cleanList(handles)
		}
	}
}

// WithPrivilegedRoles replaces the role markers that grant the Team tier.
// A role matches when it contains a marker, ignoring case.
func WithPrivilegedRoles(markers []string) Option {
	return func(c *Classifier) {
		if markers != nil {
			c.privilegedRoles = cleanList(markers)
		}
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
