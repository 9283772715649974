package cards

import (
	"errors"
	"math"
	"testing"

	"wavelength/internal/random"
)

func testPool(n int) []Card {
	pool := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, Card{Left: "L" + string(rune('a'+i)), Right: "R" + string(rune('a'+i))})
	}
	return pool
}

func TestDrawUniqueUntilExhausted(t *testing.T) {
	deck := NewDeck(testPool(12), nil, random.Seeded(7))
	seen := make(map[Card]int)
	for i := 0; i < deck.Size(); i++ {
		card := deck.Draw()
		if prev, dup := seen[card]; dup {
			t.Fatalf("card %v repeated at draw %d (first at %d)", card, i, prev)
		}
		seen[card] = i
	}
	if deck.Remaining() != 0 {
		t.Fatalf("expected exhausted deck, %d remaining", deck.Remaining())
	}
	extra := deck.Draw()
	if _, ok := seen[extra]; !ok {
		t.Fatalf("draw after exhaustion returned unknown card %v", extra)
	}
	if deck.Resets() != 1 {
		t.Fatalf("expected one reset, got %d", deck.Resets())
	}
}

func TestDrawSurfacesCustomFirst(t *testing.T) {
	custom := Card{Left: "Pineapple pizza", Right: "Crime"}
	deck := NewDeck(testPool(5), []Card{custom}, random.Seeded(1))
	if got := deck.Draw(); got != custom {
		t.Fatalf("expected custom card first, got %v", got)
	}
	for i := 1; i < deck.Size(); i++ {
		if got := deck.Draw(); got == custom {
			t.Fatalf("custom card repeated before exhaustion at draw %d", i)
		}
	}
}

func TestNewDeckDropsDuplicates(t *testing.T) {
	pool := append(testPool(3), testPool(3)...)
	deck := NewDeck(pool, []Card{pool[0]}, random.Seeded(1))
	if deck.Size() != 3 {
		t.Fatalf("expected 3 distinct cards, got %d", deck.Size())
	}
}

func TestDealTargetsWithinBounds(t *testing.T) {
	deck := NewDeck(Builtin(), nil, random.Seeded(99))
	for i := 0; i < 200; i++ {
		hand := deck.Deal()
		for slot, a := range hand {
			if a.Target < TargetMin || a.Target > TargetMax {
				t.Fatalf("slot %d target %v out of bounds", slot, a.Target)
			}
			if a.RefreshUsed {
				t.Fatalf("slot %d dealt without refresh right", slot)
			}
		}
	}
}

func TestRefreshConsumesRight(t *testing.T) {
	deck := NewDeck(Builtin(), nil, random.Seeded(3))
	hand := deck.Deal()
	hand[1].Clue = "lukewarm"

	if _, err := deck.Refresh(&hand, 1); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if hand[1].Clue != "" {
		t.Fatalf("expected clue cleared after refresh, got %q", hand[1].Clue)
	}
	if !hand[1].RefreshUsed {
		t.Fatalf("expected refresh right consumed")
	}
	before := hand[1]
	if _, err := deck.Refresh(&hand, 1); !errors.Is(err, ErrRefreshUsed) {
		t.Fatalf("expected ErrRefreshUsed, got %v", err)
	}
	if hand[1] != before {
		t.Fatalf("second refresh changed slot: %v -> %v", before, hand[1])
	}
	if _, err := deck.Refresh(&hand, 2); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestParseCard(t *testing.T) {
	cases := []struct {
		raw  string
		want Card
		ok   bool
	}{
		{raw: "Tea|Coffee", want: Card{Left: "Tea", Right: "Coffee"}, ok: true},
		{raw: "  Tea | Coffee ", want: Card{Left: "Tea", Right: "Coffee"}, ok: true},
		{raw: "Tea", ok: false},
		{raw: "|Coffee", ok: false},
	}
	for _, tc := range cases {
		got, err := ParseCard(tc.raw)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseCard(%q) = %v, %v", tc.raw, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidCard) {
			t.Fatalf("ParseCard(%q) expected ErrInvalidCard, got %v", tc.raw, err)
		}
	}
}

func TestClampEstimate(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-10, TargetMin},
		{0, TargetMin},
		{5, 5},
		{90, 90},
		{175, 175},
		{180, TargetMax},
		{math.NaN(), Center},
	}
	for _, tt := range tests {
		if got := ClampEstimate(tt.in); got != tt.want {
			t.Fatalf("ClampEstimate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
