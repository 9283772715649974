package node

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wavelength/internal/rendezvous"
	"wavelength/internal/session"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func testSessionConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.EstimateThrottle = 5 * time.Millisecond
	return cfg
}

func startHost(t *testing.T) (*Host, *httptest.Server) {
	t.Helper()
	host := NewHost(HostOptions{
		Self:    session.Participant{Identity: "alice"},
		Session: testSessionConfig(),
	})
	ts := newTestServer(t, host.Handler())
	host.joinURL = "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	host.code = "ABCD"
	t.Cleanup(func() {
		host.hub.Shutdown()
		ts.Close()
		host.sess.Close()
	})
	return host, ts
}

func joinHost(t *testing.T, host *Host, identity string) *Participant {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p, err := Join(ctx, JoinOptions{
		Self:    session.Participant{Identity: identity},
		Target:  host.joinURL,
		Session: testSessionConfig(),
	})
	if err != nil {
		t.Fatalf("join %s: %v", identity, err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestHostAndParticipantsPlayTurn(t *testing.T) {
	host, _ := startHost(t)
	bob := joinHost(t, host, "bob")
	carol := joinHost(t, host, "carol")
	all := []*session.Session{host.Session(), bob.Session(), carol.Session()}

	waitFor(t, "full roster", func() bool {
		for _, s := range all {
			if len(s.View().Roster) != 3 {
				return false
			}
		}
		return true
	})

	if err := bob.Session().StartMatch(); !errors.Is(err, session.ErrNotAuthority) {
		t.Fatalf("expected ErrNotAuthority from replica, got %v", err)
	}
	if err := host.Session().StartMatch(); err != nil {
		t.Fatalf("start match: %v", err)
	}
	waitFor(t, "hands dealt", func() bool {
		for _, s := range all {
			if s.View().Hand == nil {
				return false
			}
		}
		return true
	})
	for _, s := range all {
		if err := s.SubmitClues([2]string{"warm", "cold"}); err != nil {
			t.Fatalf("submit clues for %s: %v", s.Self().Identity, err)
		}
	}
	waitFor(t, "estimating", func() bool {
		for _, s := range all {
			if s.View().Phase != session.PhaseEstimating {
				return false
			}
		}
		return true
	})

	var presenter string
	for _, s := range all {
		view := s.View()
		if view.TurnCount != 6 {
			t.Fatalf("expected 6 turns for %s, got %d", s.Self().Identity, view.TurnCount)
		}
		if view.Presenting {
			presenter = s.Self().Identity
			continue
		}
		if !view.Turn.Hidden || view.Turn.Target != 0 {
			t.Fatalf("target visible to estimator %s", s.Self().Identity)
		}
	}
	if presenter == "" {
		t.Fatalf("no participant is presenting")
	}

	var mover *session.Session
	for _, s := range all {
		if !s.View().Presenting {
			mover = s
			break
		}
	}
	if err := mover.MoveEstimate(42); err != nil {
		t.Fatalf("move estimate: %v", err)
	}
	waitFor(t, "estimate propagated", func() bool {
		for _, s := range all {
			if s.View().Estimate != 42 {
				return false
			}
		}
		return true
	})

	for _, s := range all {
		if s.View().Presenting {
			continue
		}
		if err := s.DeclareReady(); err != nil {
			t.Fatalf("declare ready for %s: %v", s.Self().Identity, err)
		}
	}
	waitFor(t, "revealed", func() bool {
		for _, s := range all {
			if s.View().Phase != session.PhaseRevealed {
				return false
			}
		}
		return true
	})
	hostView := host.Session().View()
	for _, s := range all[1:] {
		view := s.View()
		if view.Resolution == nil || view.Resolution.Target != hostView.Resolution.Target {
			t.Fatalf("resolution mismatch for %s", s.Self().Identity)
		}
		if view.Total != hostView.Total {
			t.Fatalf("total mismatch for %s: %d vs %d", s.Self().Identity, view.Total, hostView.Total)
		}
	}
}

func TestParticipantLeavingShrinksRoster(t *testing.T) {
	host, _ := startHost(t)
	bob := joinHost(t, host, "bob")
	carol := joinHost(t, host, "carol")
	waitFor(t, "full roster", func() bool {
		return len(bob.Session().View().Roster) == 3
	})

	carol.Close()
	waitFor(t, "carol removed", func() bool {
		return len(host.Session().View().Roster) == 2 && len(bob.Session().View().Roster) == 2
	})
}

func TestHostLossMarksReplica(t *testing.T) {
	host, ts := startHost(t)
	bob := joinHost(t, host, "bob")
	waitFor(t, "bob joined", func() bool {
		return len(bob.Session().View().Roster) == 2
	})

	host.hub.Shutdown()
	ts.Close()
	select {
	case <-bob.Done():
	case <-time.After(3 * time.Second):
		t.Fatalf("participant link did not close")
	}
	waitFor(t, "authority lost", func() bool {
		return bob.Session().View().Lost
	})
	if err := bob.Session().SubmitClues([2]string{"a", "b"}); !errors.Is(err, session.ErrAuthorityLost) {
		t.Fatalf("expected ErrAuthorityLost, got %v", err)
	}
}

func TestStatusEndpointsRender(t *testing.T) {
	host, ts := startHost(t)
	joinHost(t, host, "bob")
	waitFor(t, "bob joined", func() bool {
		return len(host.Session().View().Roster) == 2
	})

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code %d", resp.StatusCode)
	}
	for _, want := range []string{"ABCD", "alice", "bob"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("status page missing %q", want)
		}
	}

	resp, err = http.Get(ts.URL + "/qr.png")
	if err != nil {
		t.Fatalf("get qr: %v", err)
	}
	png, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected qr content type %q", ct)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatalf("qr body is not a png")
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	var health map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	resp.Body.Close()
	if health["status"] != "ok" || health["participants"] != float64(2) {
		t.Fatalf("unexpected health payload %v", health)
	}
}

func TestStatusFromViewHidesTarget(t *testing.T) {
	view := session.View{
		Phase:     session.PhaseEstimating,
		TurnIndex: 0,
		TurnCount: 4,
		Turn:      &session.Turn{Presenter: "alice", Clue: "lukewarm", Target: 0, Hidden: true},
		Roster:    []session.Participant{{Identity: "alice", IsAuthority: true}, {Identity: "bob"}},
		Ready:     []string{"bob"},
	}
	state := StatusFromView(view, "WXYZ", "ws://example/ws")
	if state.Revealed || state.Target != 0 {
		t.Fatalf("unrevealed turn exposes target: %+v", state)
	}
	if state.TurnLabel != "Turn 1 of 4" {
		t.Fatalf("unexpected label %q", state.TurnLabel)
	}
	if !state.Roster[1].Ready || state.Roster[0].Ready {
		t.Fatalf("ready markers wrong: %+v", state.Roster)
	}
	if state.ShowScores {
		t.Fatalf("scores shown before reveal")
	}

	view.Phase = session.PhaseRevealed
	view.Resolution = &session.TurnResolved{Target: 61, Points: 3}
	state = StatusFromView(view, "WXYZ", "")
	if !state.Revealed || state.Target != 61 || state.Points != 3 || !state.ShowScores {
		t.Fatalf("revealed turn not shown: %+v", state)
	}
}

func TestRunPublishesAndReleasesRoom(t *testing.T) {
	dir := rendezvous.NewMemory()
	host := NewHost(HostOptions{
		Self:      session.Participant{Identity: "alice"},
		Addr:      "127.0.0.1:0",
		Session:   testSessionConfig(),
		Directory: dir,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- host.Run(ctx, func(code, _ string) { ready <- code })
	}()

	var code string
	select {
	case code = <-ready:
	case err := <-done:
		t.Skipf("skipping test; host could not start: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("host did not start")
	}
	if !rendezvous.Valid(code) {
		t.Fatalf("invalid room code %q", code)
	}

	joinCtx, joinCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer joinCancel()
	bob, err := Join(joinCtx, JoinOptions{
		Self:      session.Participant{Identity: "bob"},
		Target:    strings.ToLower(code),
		Directory: dir,
		Session:   testSessionConfig(),
	})
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	defer bob.Close()
	waitFor(t, "bob joined", func() bool {
		return len(host.Session().View().Roster) == 2
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatalf("host did not shut down")
	}
	if _, err := dir.Resolve(context.Background(), code); !errors.Is(err, rendezvous.ErrRoomNotFound) {
		t.Fatalf("expected released room, got %v", err)
	}
}

func TestJoinRejectsBadTargets(t *testing.T) {
	ctx := context.Background()
	if _, err := Join(ctx, JoinOptions{Self: session.Participant{Identity: "bob"}, Target: "??"}); !errors.Is(err, rendezvous.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if _, err := Join(ctx, JoinOptions{Self: session.Participant{Identity: "bob"}, Target: "ABCD"}); err == nil {
		t.Fatalf("expected error without directory")
	}
	_, err := Join(ctx, JoinOptions{
		Self:      session.Participant{Identity: "bob"},
		Target:    "ABCD",
		Directory: rendezvous.NewMemory(),
		Session:   testSessionConfig(),
	})
	if !errors.Is(err, rendezvous.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}
