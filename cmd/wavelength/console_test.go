package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"wavelength/internal/cards"
	"wavelength/internal/config"
	"wavelength/internal/session"
)

type nopOutbound struct{}

func (nopOutbound) Send(session.Handle, session.Message)        {}
func (nopOutbound) Broadcast(session.Message, []session.Handle) {}
func (nopOutbound) Disconnect(session.Handle)                   {}

func newTestConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	con := newConsole(&out)
	cfg := session.DefaultConfig()
	cfg.Authority = true
	con.sess = session.New(cfg, session.Participant{Identity: "alice"}, nopOutbound{})
	t.Cleanup(con.sess.Close)
	return con, &out
}

func TestConsoleRejectsBadUsage(t *testing.T) {
	con, _ := newTestConsole(t)
	for _, line := range []string{"move left", "refresh x", "clue only one", "power bogus", "dance"} {
		if err := con.exec(line); !errors.Is(err, errUsage) {
			t.Fatalf("%q: expected usage error, got %v", line, err)
		}
	}
	if err := con.exec("   "); err != nil {
		t.Fatalf("blank line: %v", err)
	}
}

func TestConsoleForwardsSessionErrors(t *testing.T) {
	con, _ := newTestConsole(t)
	if err := con.exec("start"); !errors.Is(err, session.ErrTooFewParticipants) {
		t.Fatalf("expected ErrTooFewParticipants, got %v", err)
	}
	if err := con.exec("ready"); !errors.Is(err, session.ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestConsoleStatusAndChanges(t *testing.T) {
	con, out := newTestConsole(t)
	if err := con.exec("status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out.String(), "-- lobby") || !strings.Contains(out.String(), "alice (host)") {
		t.Fatalf("unexpected status output %q", out.String())
	}

	out.Reset()
	view := con.sess.View()
	con.changed(view)
	first := out.Len()
	if first == 0 {
		t.Fatalf("first change not printed")
	}
	con.changed(view)
	if out.Len() != first {
		t.Fatalf("unchanged view printed twice")
	}
}

func TestConsoleRunReadsLines(t *testing.T) {
	con, out := newTestConsole(t)
	con.run(context.Background(), strings.NewReader("help\nmove nowhere\n"))
	if !strings.Contains(out.String(), "commands:") {
		t.Fatalf("help not printed: %q", out.String())
	}
	if !strings.Contains(out.String(), "error: usage") {
		t.Fatalf("usage error not printed: %q", out.String())
	}
}

func TestParseCustomCards(t *testing.T) {
	got, err := parseCustomCards("hot | cold; ;wet|dry")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0] != (cards.Card{Left: "hot", Right: "cold"}) || got[1].Right != "dry" {
		t.Fatalf("unexpected cards %+v", got)
	}
	if _, err := parseCustomCards("nopipe"); !errors.Is(err, cards.ErrInvalidCard) {
		t.Fatalf("expected ErrInvalidCard, got %v", err)
	}
}

func TestSessionConfigFromSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Scoring = "presenter"
	cfg.ClueSeconds = 30
	cfg.PowerUps = false
	cfg.CustomCard = "early|late"
	got, err := sessionConfig(context.Background(), &cfg, &options{})
	if err != nil {
		t.Fatalf("session config: %v", err)
	}
	if got.Scoring != session.ScoringPresenter || got.ClueTimeout.Seconds() != 30 || got.PowerUps {
		t.Fatalf("settings not applied: %+v", got)
	}
	if len(got.Pool) != len(cards.Builtin()) || len(got.Custom) != 1 {
		t.Fatalf("unexpected pools: %d built-in, %d custom", len(got.Pool), len(got.Custom))
	}

	cfg.Scoring = "solo"
	if _, err := sessionConfig(context.Background(), &cfg, &options{}); err == nil {
		t.Fatalf("expected error for unknown scoring mode")
	}
}
