package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"wavelength/internal/cards"
	"wavelength/internal/session"
)

var errUsage = errors.New("usage")

const consoleHelp = `commands:
  start                 deal a new match (host)
  restart               abandon the match and deal again (host)
  clue <first> | <second>
  refresh <1|2>         swap one dealt card
  move <0-180>          move the shared pointer
  ready                 lock in the current estimate
  next                  advance after a reveal
  power <kind> [word]   reveal-half, double-points or extra-clue
  status                print the current state
  help`

// console reads commands from a terminal and prints state changes.
type console struct {
	mu   sync.Mutex
	out  io.Writer
	sess *session.Session
	last session.View
	seen bool
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

func (c *console) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := c.exec(scanner.Text()); err != nil {
			c.printf("error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("console input failed: %v", err)
	}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) exec(line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "help", "?":
		c.printf("%s\n", consoleHelp)
		return nil
	case "status":
		c.printf("%s", describe(c.sess.View()))
		return nil
	case "start":
		return c.sess.StartMatch()
	case "restart":
		return c.sess.RestartMatch()
	case "clue":
		first, second, ok := strings.Cut(rest, "|")
		if !ok {
			return fmt.Errorf("%w: clue <first> | <second>", errUsage)
		}
		return c.sess.SubmitClues([cards.SlotsPerParticipant]string{strings.TrimSpace(first), strings.TrimSpace(second)})
	case "refresh":
		slot, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("%w: refresh <1|2>", errUsage)
		}
		return c.sess.RefreshCard(slot - 1)
	case "move":
		pos, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return fmt.Errorf("%w: move <0-180>", errUsage)
		}
		return c.sess.MoveEstimate(pos)
	case "ready":
		return c.sess.DeclareReady()
	case "next":
		return c.sess.RequestAdvance()
	case "power":
		kind, extra, _ := strings.Cut(rest, " ")
		mod := session.ModifierKind(strings.ToLower(kind))
		if !mod.Known() {
			return fmt.Errorf("%w: power reveal-half|double-points|extra-clue [word]", errUsage)
		}
		return c.sess.ActivateModifier(mod, strings.TrimSpace(extra))
	default:
		return fmt.Errorf("%w: unknown command %q, try help", errUsage, cmd)
	}
}

// changed prints a summary whenever the phase, turn or reveal changes.
func (c *console) changed(v session.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	notable := !c.seen ||
		v.Phase != c.last.Phase ||
		v.TurnIndex != c.last.TurnIndex ||
		len(v.Roster) != len(c.last.Roster) ||
		(v.Resolution != nil) != (c.last.Resolution != nil) ||
		v.Lost != c.last.Lost
	c.last = v
	c.seen = true
	if notable {
		fmt.Fprint(c.out, describe(v))
	}
}

func describe(v session.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s", v.Phase)
	if v.Lost {
		b.WriteString(" (host lost)")
	}
	b.WriteString("\n")

	names := make([]string, 0, len(v.Roster))
	for _, p := range v.Roster {
		name := p.Avatar + " " + p.Identity
		if p.IsAuthority {
			name += " (host)"
		}
		names = append(names, name)
	}
	fmt.Fprintf(&b, "players: %s\n", strings.Join(names, ", "))

	switch v.Phase {
	case session.PhaseSetup:
		if v.Hand != nil {
			for i, a := range v.Hand {
				fmt.Fprintf(&b, "card %d: %s  target %.0f\n", i+1, a.Card, a.Target)
			}
		}
		if len(v.PendingSubmissions) > 0 {
			fmt.Fprintf(&b, "waiting for clues: %s\n", strings.Join(v.PendingSubmissions, ", "))
		}
	case session.PhaseEstimating, session.PhaseRevealed:
		if v.Turn != nil {
			fmt.Fprintf(&b, "turn %d/%d: %s presents %s\n", v.TurnIndex+1, v.TurnCount, v.Turn.Presenter, v.Turn.Card)
			fmt.Fprintf(&b, "clue: %s\n", v.Turn.Clue)
			if v.Presenting || !v.Turn.Hidden {
				fmt.Fprintf(&b, "target: %.0f\n", v.Turn.Target)
			}
		}
		fmt.Fprintf(&b, "pointer: %.0f\n", v.Estimate)
		if v.Effects.RevealedHalf != "" {
			fmt.Fprintf(&b, "target is on the %s half\n", v.Effects.RevealedHalf)
		}
		if v.Resolution != nil {
			fmt.Fprintf(&b, "revealed %.0f, scored %d\n", v.Resolution.Target, v.Resolution.Points)
		} else if len(v.PendingReady) > 0 {
			fmt.Fprintf(&b, "waiting for: %s\n", strings.Join(v.PendingReady, ", "))
		}
		var powers []string
		for kind, ok := range v.Modifiers {
			if ok {
				powers = append(powers, string(kind))
			}
		}
		if len(powers) > 0 {
			sort.Strings(powers)
			fmt.Fprintf(&b, "power-ups: %s\n", strings.Join(powers, ", "))
		}
	case session.PhaseFinished:
		fmt.Fprintf(&b, "total %d: %s\n", v.Total, v.Rating)
	}
	if v.Scoring == session.ScoringPresenter && len(v.Standings) > 0 && v.Phase != session.PhaseLobby {
		for _, s := range v.Standings {
			fmt.Fprintf(&b, "  %s %d\n", s.Identity, s.Points)
		}
	}
	return b.String()
}
