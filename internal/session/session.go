package session

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"wavelength/internal/cards"
	"wavelength/internal/random"
)

// Outbound delivers messages over transport links. Implementations must not
// call back into the session synchronously.
type Outbound interface {
	Send(to Handle, m Message)
	// Broadcast sends one message to every handle in to.
	Broadcast(m Message, to []Handle)
	Disconnect(h Handle)
}

type Config struct {
	Authority bool
	// Upstream is the link to the authority; replicas only.
	Upstream Handle

	ClueTimeout      time.Duration
	EstimateTimeout  time.Duration
	EstimateThrottle time.Duration
	Scoring          ScoringMode
	MinParticipants  int
	MaxParticipants  int
	PowerUps         bool

	Pool   []cards.Card
	Custom []cards.Card
	Rand   *rand.Rand
	Now    func() time.Time

	// OnChange receives a fresh view after every accepted input.
	OnChange func(View)
}

func DefaultConfig() Config {
	return Config{
		ClueTimeout:      DefaultClueTimeout,
		EstimateTimeout:  DefaultEstimateTimeout,
		EstimateThrottle: DefaultEstimateThrottle,
		Scoring:          ScoringShared,
		MinParticipants:  DefaultMinParticipants,
		MaxParticipants:  DefaultMaxParticipants,
		PowerUps:         true,
	}
}

type delivery struct {
	to         Handle
	recipients []Handle
	broadcast  bool
	disconnect bool
	msg        Message
}

// Session is one participant's view of a match. All inputs are serialised
// by mu; outgoing messages are queued while it is held and delivered, in
// order, after it is released.
type Session struct {
	mu      sync.Mutex
	flushMu sync.Mutex

	cfg  Config
	self Participant
	role role
	st   state
	deck *cards.Deck
	out  Outbound
	now  func() time.Time

	outbox []delivery

	phaseTimer      *time.Timer
	estimateTimer   *time.Timer
	pendingEstimate float64
	pendingTurn     int

	lost bool
}

func New(cfg Config, self Participant, out Outbound) *Session {
	def := DefaultConfig()
	if cfg.MinParticipants <= 0 {
		cfg.MinParticipants = def.MinParticipants
	}
	if cfg.MaxParticipants <= 0 {
		cfg.MaxParticipants = def.MaxParticipants
	}
	if cfg.MaxParticipants < cfg.MinParticipants {
		cfg.MaxParticipants = cfg.MinParticipants
	}
	if cfg.ClueTimeout <= 0 {
		cfg.ClueTimeout = def.ClueTimeout
	}
	if cfg.EstimateTimeout <= 0 {
		cfg.EstimateTimeout = def.EstimateTimeout
	}
	if cfg.Scoring == "" {
		cfg.Scoring = def.Scoring
	}
	if cfg.Rand == nil {
		cfg.Rand = random.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.Pool) == 0 {
		cfg.Pool = cards.Builtin()
	}

	self.Identity = strings.TrimSpace(self.Identity)
	self.Handle = LocalHandle
	self.IsAuthority = cfg.Authority

	s := &Session{
		cfg:  cfg,
		self: self,
		out:  out,
		now:  cfg.Now,
		st:   newState(cfg.Scoring, cfg.PowerUps),
	}
	if cfg.Authority {
		s.role = authority{}
		s.deck = cards.NewDeck(cfg.Pool, cfg.Custom, cfg.Rand)
		s.st.roster.Add(self)
		if p, ok := s.st.roster.Get(self.Identity); ok {
			s.self = p
		}
	} else {
		s.role = replica{}
	}
	return s
}

func (s *Session) Self() Participant {
	return s.self
}

func (s *Session) IsAuthority() bool {
	return s.role.isAuthority()
}

// update runs fn under the state lock and then delivers whatever fn queued.
func (s *Session) update(fn func() error) error {
	s.mu.Lock()
	err := fn()
	pending := s.outbox
	s.outbox = nil
	var view *View
	if s.cfg.OnChange != nil {
		v := s.viewLocked()
		view = &v
	}
	s.flushMu.Lock()
	s.mu.Unlock()

	for _, d := range pending {
		switch {
		case d.disconnect:
			s.out.Disconnect(d.to)
		case d.broadcast:
			s.out.Broadcast(d.msg, d.recipients)
		default:
			s.out.Send(d.to, d.msg)
		}
	}
	s.flushMu.Unlock()

	if view != nil {
		s.cfg.OnChange(*view)
	}
	return err
}

func (s *Session) send(to Handle, m Message) {
	if to == LocalHandle && s.role.isAuthority() {
		return
	}
	s.outbox = append(s.outbox, delivery{to: to, msg: m})
}

// broadcast queues m for every announced remote participant except one.
// Links that have not joined the roster hear nothing.
func (s *Session) broadcast(m Message, except Handle) {
	var to []Handle
	for _, p := range s.st.roster.Remote() {
		if p.Handle != except {
			to = append(to, p.Handle)
		}
	}
	if len(to) == 0 {
		return
	}
	s.outbox = append(s.outbox, delivery{broadcast: true, recipients: to, msg: m})
}

func (s *Session) disconnect(h Handle) {
	s.outbox = append(s.outbox, delivery{disconnect: true, to: h})
}

// Receive applies a decoded message arriving over link from.
func (s *Session) Receive(from Handle, m Message) {
	_ = s.update(func() error {
		if s.lost {
			return ErrAuthorityLost
		}
		s.role.receive(s, from, m)
		return nil
	})
}

// LinkClosed reports that a transport link went away.
func (s *Session) LinkClosed(h Handle) {
	_ = s.update(func() error {
		s.role.linkClosed(s, h)
		return nil
	})
}

// Close stops pending timers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPhaseTimer()
	if s.estimateTimer != nil {
		s.estimateTimer.Stop()
		s.estimateTimer = nil
	}
}

// Join announces the local participant to the authority.
func (s *Session) Join() error {
	return s.update(func() error {
		if s.role.isAuthority() {
			return nil
		}
		if s.lost {
			return ErrAuthorityLost
		}
		s.send(s.cfg.Upstream, ParticipantAnnounce{
			Identity: s.self.Identity,
			Avatar:   s.self.Avatar,
			Color:    s.self.Color,
		})
		return nil
	})
}

// StartMatch deals hands and enters Setup.
func (s *Session) StartMatch() error {
	return s.update(func() error {
		if !s.role.isAuthority() {
			return ErrNotAuthority
		}
		if s.st.phase != PhaseLobby && s.st.phase != PhaseFinished {
			return ErrWrongPhase
		}
		return authority{}.startMatch(s)
	})
}

// RestartMatch abandons the current match and deals a new one, or returns
// everyone to the lobby when the roster is too small.
func (s *Session) RestartMatch() error {
	return s.update(func() error {
		if !s.role.isAuthority() {
			return ErrNotAuthority
		}
		a := authority{}
		a.restart(s)
		if s.st.roster.Len() < s.cfg.MinParticipants {
			return nil
		}
		return a.startMatch(s)
	})
}

func (s *Session) SubmitClues(clues [cards.SlotsPerParticipant]string) error {
	return s.update(func() error {
		if err := s.usable(); err != nil {
			return err
		}
		if s.st.phase != PhaseSetup {
			return ErrWrongPhase
		}
		if s.st.submitted[s.self.Identity] {
			return ErrAlreadySubmitted
		}
		for i := range clues {
			clues[i] = truncateClue(clues[i])
			if clues[i] == "" {
				return ErrEmptyClue
			}
		}
		s.role.intent(s, ClueSubmitted{Identity: s.self.Identity, Clues: clues})
		return nil
	})
}

func (s *Session) RefreshCard(slot int) error {
	return s.update(func() error {
		if err := s.usable(); err != nil {
			return err
		}
		if s.st.phase != PhaseSetup || s.st.submitted[s.self.Identity] {
			return ErrWrongPhase
		}
		if !cards.ValidSlot(slot) {
			return ErrInvalidSlot
		}
		hand, ok := s.st.hands[s.self.Identity]
		if !ok {
			return ErrUnknownParticipant
		}
		if hand[slot].RefreshUsed {
			return ErrRefreshUsed
		}
		if s.role.isAuthority() {
			_, err := s.deck.Refresh(&hand, slot)
			if err != nil {
				return err
			}
			s.st.setHand(s.self.Identity, hand)
			return nil
		}
		hand[slot].RefreshUsed = true
		hand[slot].Clue = ""
		s.st.setHand(s.self.Identity, hand)
		s.send(s.cfg.Upstream, RefreshRequested{Identity: s.self.Identity, Slot: slot})
		return nil
	})
}

// MoveEstimate updates the shared pointer locally at once and sends at most
// one update per throttle interval, always ending with the latest value.
func (s *Session) MoveEstimate(pos float64) error {
	return s.update(func() error {
		if err := s.usable(); err != nil {
			return err
		}
		if s.st.phase != PhaseEstimating {
			return ErrWrongPhase
		}
		if s.st.presenter() == s.self.Identity {
			return ErrPresenter
		}
		pos = cards.ClampEstimate(pos)
		s.st.moveEstimate(pos, s.self.Identity, s.self.Avatar, s.now())
		if s.cfg.EstimateThrottle <= 0 {
			s.sendEstimate(pos, s.st.turn)
			return nil
		}
		s.pendingEstimate = pos
		s.pendingTurn = s.st.turn
		if s.estimateTimer == nil {
			s.estimateTimer = time.AfterFunc(s.cfg.EstimateThrottle, s.flushEstimate)
		}
		return nil
	})
}

func (s *Session) flushEstimate() {
	_ = s.update(func() error {
		s.estimateTimer = nil
		if s.lost || s.st.phase != PhaseEstimating || s.st.turn != s.pendingTurn {
			return nil
		}
		s.sendEstimate(s.pendingEstimate, s.pendingTurn)
		return nil
	})
}

func (s *Session) sendEstimate(pos float64, turn int) {
	s.role.intent(s, EstimateMoved{
		Position:    pos,
		Mover:       s.self.Identity,
		MoverAvatar: s.self.Avatar,
		TurnIndex:   turn,
	})
}

func (s *Session) DeclareReady() error {
	return s.update(func() error {
		if err := s.usable(); err != nil {
			return err
		}
		if s.st.phase != PhaseEstimating {
			return ErrWrongPhase
		}
		if s.st.presenter() == s.self.Identity {
			return ErrPresenter
		}
		if s.st.ready[s.self.Identity] {
			return nil
		}
		turn := s.st.turn
		if s.estimateTimer != nil {
			s.estimateTimer.Stop()
			s.estimateTimer = nil
			s.sendEstimate(s.pendingEstimate, turn)
		}
		s.role.intent(s, ParticipantReady{Identity: s.self.Identity, TurnIndex: turn})
		return nil
	})
}

func (s *Session) RequestAdvance() error {
	return s.update(func() error {
		if err := s.usable(); err != nil {
			return err
		}
		if s.st.phase != PhaseRevealed {
			return ErrWrongPhase
		}
		s.role.intent(s, AdvanceRequested{Identity: s.self.Identity, TurnIndex: s.st.turn})
		return nil
	})
}

func (s *Session) ActivateModifier(kind ModifierKind, extra string) error {
	return s.update(func() error {
		if err := s.usable(); err != nil {
			return err
		}
		if !s.st.powerUps {
			return ErrModifierNotAllowed
		}
		if s.st.phase != PhaseEstimating {
			return ErrWrongPhase
		}
		if err := checkModifier(kind, s.self.Identity, s.st.presenter(), s.st.used[s.self.Identity], s.st.effects); err != nil {
			return err
		}
		m := ModifierActivated{Identity: s.self.Identity, Modifier: kind, TurnIndex: s.st.turn}
		if kind == ModifierExtraClue {
			m.Extra = normalizeExtraClue(extra)
			if m.Extra == "" {
				return ErrEmptyClue
			}
		}
		s.role.intent(s, m)
		return nil
	})
}

func (s *Session) usable() error {
	if s.lost {
		return ErrAuthorityLost
	}
	if !s.st.roster.Has(s.self.Identity) {
		return ErrUnknownParticipant
	}
	return nil
}
