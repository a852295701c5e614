// Package rules holds the tracked-user rule set and the author matcher.
// A Set is immutable once built; reloads replace it wholesale
package rules

import (
	pstrings "shamewizard/internal/platform/strings"
)

// TrackedRule pairs a watched account with the evidence a reply cites
type TrackedRule struct {
	User    string `json:"user" yaml:"user" validate:"required"`
	URL     string `json:"url" yaml:"url" validate:"required"`
	Comment string `json:"comment" yaml:"comment"`
}

// Set is an ordered, immutable collection of rules indexed by folded user
type Set struct {
	rules  []TrackedRule
	byUser map[string][]int
}

// NewSet builds a Set from rules, preserving source order
func NewSet(rules []TrackedRule) *Set {
	s := &Set{
		rules:  append([]TrackedRule(nil), rules...),
		byUser: make(map[string][]int, len(rules)),
	}
	for i, r := range s.rules {
		k := pstrings.Fold(r.User)
		s.byUser[k] = append(s.byUser[k], i)
	}
	return s
}

// Empty is the zero rule set
func Empty() *Set { return NewSet(nil) }

// Len returns the number of rules
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Users returns the number of distinct tracked accounts
func (s *Set) Users() int {
	if s == nil {
		return 0
	}
	return len(s.byUser)
}

// All returns a copy of the rules in source order
func (s *Set) All() []TrackedRule {
	if s == nil {
		return nil
	}
	return append([]TrackedRule(nil), s.rules...)
}

// Match returns every rule whose user equals author under case folding,
// in source order. Nil when nothing matches
func (s *Set) Match(author string) []TrackedRule {
	if s == nil || author == "" {
		return nil
	}
	idx := s.byUser[pstrings.Fold(author)]
	if len(idx) == 0 {
		return nil
	}
	out := make([]TrackedRule, len(idx))
	for i, j := range idx {
		out[i] = s.rules[j]
	}
	return out
}

// Intn is the slice of *rand.Rand that Pick needs
type Intn interface {
	IntN(n int) int
}

// Pick draws one rule uniformly at random. ok is false for an empty slice
func Pick(matches []TrackedRule, rng Intn) (TrackedRule, bool) {
	switch len(matches) {
	case 0:
		return TrackedRule{}, false
	case 1:
		return matches[0], true
	}
	return matches[rng.IntN(len(matches))], true
}
