package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"wavelength/internal/rendezvous"
	"wavelength/internal/session"
	"wavelength/internal/transport"
	"wavelength/internal/web"
)

const qrSize = 320

type HostOptions struct {
	Self session.Participant
	Addr string
	// PublicURL is the websocket URL participants dial. Derived from the
	// listener when empty.
	PublicURL string
	Session   session.Config
	Directory rendezvous.Directory
}

// Host is the authority participant together with the server its peers
// connect to.
type Host struct {
	opts    HostOptions
	sess    *session.Session
	hub     *transport.Hub
	code    string
	joinURL string
}

func NewHost(opts HostOptions) *Host {
	h := &Host{opts: opts}
	h.hub = transport.NewHub(hostEvents{h: h})
	cfg := opts.Session
	cfg.Authority = true
	h.sess = session.New(cfg, opts.Self, hubOutbound{hub: h.hub})
	return h
}

func (h *Host) Session() *session.Session {
	return h.sess
}

func (h *Host) RoomCode() string {
	return h.code
}

func (h *Host) JoinURL() string {
	return h.joinURL
}

func (h *Host) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/ws", h.hub.ServeWS)
	router.GET("/status", h.handleStatus)
	router.GET("/qr.png", h.handleQR)
	router.GET("/healthz", h.handleHealth)
	return router
}

// Run serves until ctx is cancelled, publishing the room in the directory
// for as long as it is up.
func (h *Host) Run(ctx context.Context, ready func(code, joinURL string)) error {
	listener, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	h.joinURL = h.opts.PublicURL
	if h.joinURL == "" {
		h.joinURL = "ws://" + listener.Addr().String() + "/ws"
	}
	if h.opts.Directory != nil {
		code, err := rendezvous.Claim(ctx, h.opts.Directory, h.joinURL)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("claim room: %w", err)
		}
		h.code = code
	}

	srv := &http.Server{
		Handler:           h.Handler(),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Printf("host listening addr=%s room=%s join=%s", listener.Addr(), h.code, h.joinURL)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	if ready != nil {
		ready(h.code, h.joinURL)
	}

	select {
	case <-ctx.Done():
	case err := <-errs:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if h.opts.Directory != nil && h.code != "" {
		if err := h.opts.Directory.Release(shutdownCtx, h.code); err != nil {
			log.Printf("room release failed code=%s error=%v", h.code, err)
		}
	}
	h.hub.Shutdown()
	h.sess.Close()
	return srv.Shutdown(shutdownCtx)
}

func (h *Host) handleStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	state := StatusFromView(h.sess.View(), h.code, h.joinURL)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.Status(state).Render(r.Context(), w); err != nil {
		log.Printf("status render failed: %v", err)
	}
}

func (h *Host) handleQR(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	target := h.joinURL
	if h.code != "" {
		target = h.code
	}
	if target == "" {
		http.Error(w, "room not ready", http.StatusServiceUnavailable)
		return
	}
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Host) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	view := h.sess.View()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":       "ok",
		"phase":        view.Phase,
		"participants": len(view.Roster),
		"links":        h.hub.Len(),
	})
}

// StatusFromView projects a session view onto the public status page.
func StatusFromView(view session.View, code, joinURL string) web.StatusState {
	state := web.StatusState{
		RoomCode:   code,
		JoinURL:    joinURL,
		Phase:      string(view.Phase),
		Estimate:   view.Estimate,
		Total:      view.Total,
		Scoring:    string(view.Scoring),
		Deadline:   view.Deadline,
		ShowScores: view.Phase == session.PhaseRevealed || view.Phase == session.PhaseFinished,
	}
	submitted := make(map[string]bool, len(view.Submitted))
	for _, id := range view.Submitted {
		submitted[id] = true
	}
	ready := make(map[string]bool, len(view.Ready))
	for _, id := range view.Ready {
		ready[id] = true
	}
	for _, p := range view.Roster {
		state.Roster = append(state.Roster, web.StatusParticipant{
			Identity:  p.Identity,
			Avatar:    p.Avatar,
			Color:     p.Color,
			Authority: p.IsAuthority,
			Submitted: submitted[p.Identity],
			Ready:     ready[p.Identity],
		})
	}
	for _, s := range view.Standings {
		state.Standings = append(state.Standings, web.StatusScore{Identity: s.Identity, Points: s.Points})
	}
	if view.Turn != nil {
		state.TurnLabel = fmt.Sprintf("Turn %d of %d", view.TurnIndex+1, view.TurnCount)
		state.Card = view.Turn.Card.String()
		state.Clue = view.Turn.Clue
		state.Presenter = view.Turn.Presenter
		if view.Resolution != nil {
			state.Revealed = true
			state.Target = view.Resolution.Target
			state.Points = view.Resolution.Points
		}
	}
	if view.Phase == session.PhaseFinished {
		state.Rating = string(view.Rating)
	}
	return state
}
