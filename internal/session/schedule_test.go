package session

import (
	"errors"
	"reflect"
	"testing"

	"wavelength/internal/cards"
)

func testHands(ids ...string) ([]Participant, map[string]cards.Hand) {
	roster := make([]Participant, 0, len(ids))
	hands := make(map[string]cards.Hand, len(ids))
	for i, id := range ids {
		roster = append(roster, Participant{Identity: id})
		var hand cards.Hand
		for slot := range hand {
			hand[slot] = cards.Assignment{
				Card:   cards.Card{Left: id, Right: string(rune('A' + slot))},
				Target: float64(10*i + slot + 5),
				Clue:   id + "-clue",
			}
		}
		hands[id] = hand
	}
	return roster, hands
}

func TestBuildScheduleInterleavesSlotMajor(t *testing.T) {
	roster, hands := testHands("ann", "ben", "cat")
	turns, err := BuildSchedule(roster, hands)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(turns) != 6 {
		t.Fatalf("len = %d, want 6", len(turns))
	}
	want := []string{"ann/0", "ben/0", "cat/0", "ann/1", "ben/1", "cat/1"}
	for i, turn := range turns {
		got := turn.Presenter + "/" + string(rune('0'+turn.Slot))
		if got != want[i] || turn.Index != i {
			t.Fatalf("turn %d = %s (index %d), want %s", i, got, turn.Index, want[i])
		}
		if turn.Target != hands[turn.Presenter][turn.Slot].Target {
			t.Fatalf("turn %d target mismatch", i)
		}
	}
}

func TestBuildScheduleIsDeterministic(t *testing.T) {
	roster, hands := testHands("ann", "ben")
	first, err := BuildSchedule(roster, hands)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := BuildSchedule(roster, hands)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("schedules differ:\n%+v\n%+v", first, second)
	}
}

func TestBuildScheduleMissingHand(t *testing.T) {
	roster, hands := testHands("ann", "ben")
	delete(hands, "ben")
	if _, err := BuildSchedule(roster, hands); !errors.Is(err, ErrMissingSubmission) {
		t.Fatalf("err = %v, want ErrMissingSubmission", err)
	}
}

func TestRedactHidesOthersTargets(t *testing.T) {
	roster, hands := testHands("ann", "ben")
	turns, err := BuildSchedule(roster, hands)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	redacted := Redact(turns, "ann")
	for i, turn := range redacted {
		if turn.Presenter == "ann" {
			if turn.Hidden || turn.Target != turns[i].Target {
				t.Fatalf("ann's own turn %d was redacted", i)
			}
			continue
		}
		if !turn.Hidden || turn.Target != 0 {
			t.Fatalf("turn %d leaks ben's target", i)
		}
	}
	if turns[1].Hidden {
		t.Fatalf("Redact mutated its input")
	}
}
