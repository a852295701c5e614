package rules

import (
	"math/rand/v2"
	"testing"

	kit "shamewizard/internal/platform/testkit"
)

func sample() []TrackedRule {
	return []TrackedRule{
		{User: "Spez", URL: "r/a/1", Comment: "first"},
		{User: "other", URL: "r/b/2", Comment: "unrelated"},
		{User: "spez", URL: "r/a/3", Comment: "second"},
	}
}

func TestMatch_CaseFoldedInSourceOrder(t *testing.T) {
	t.Parallel()

	s := NewSet(sample())
	got := s.Match("SPEZ")
	if len(got) != 2 {
		t.Fatalf("want 2 matches, got %d", len(got))
	}
	kit.Equal(t, got[0].Comment, "first")
	kit.Equal(t, got[1].Comment, "second")

	if s.Match("nobody") != nil {
		t.Fatal("unexpected match for untracked author")
	}
	if s.Match("") != nil {
		t.Fatal("empty author should not match")
	}
}

func TestMatch_UnicodeFold(t *testing.T) {
	t.Parallel()

	s := NewSet([]TrackedRule{{User: "Straße", URL: "u", Comment: "c"}})
	if len(s.Match("STRASSE")) != 1 {
		t.Fatal("full case folding should match STRASSE")
	}
}

func TestSet_CountsAndCopy(t *testing.T) {
	t.Parallel()

	in := sample()
	s := NewSet(in)
	in[0].User = "mutated"

	kit.Equal(t, s.Len(), 3)
	kit.Equal(t, s.Users(), 2)
	kit.Equal(t, s.All()[0].User, "Spez")

	var nilSet *Set
	kit.Equal(t, nilSet.Len(), 0)
	if nilSet.Match("spez") != nil {
		t.Fatal("nil set should match nothing")
	}
	kit.Equal(t, Empty().Len(), 0)
}

type fixed int

func (f fixed) IntN(int) int { return int(f) }

func TestPick(t *testing.T) {
	t.Parallel()

	if _, ok := Pick(nil, fixed(0)); ok {
		t.Fatal("Pick on empty should report !ok")
	}

	one := sample()[:1]
	r, ok := Pick(one, nil)
	if !ok || r.Comment != "first" {
		t.Fatalf("single match should be returned without consulting rng: %+v", r)
	}

	r, _ = Pick(sample(), fixed(2))
	kit.Equal(t, r.Comment, "second")
}

func TestPick_Uniformish(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	ms := sample()
	seen := map[string]int{}
	for range 3000 {
		r, _ := Pick(ms, rng)
		seen[r.Comment]++
	}
	for _, r := range ms {
		if seen[r.Comment] < 800 {
			t.Fatalf("rule %q drawn only %d/3000 times", r.Comment, seen[r.Comment])
		}
	}
}
