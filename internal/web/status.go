package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Status renders the host's read-only room page: join details, roster and
// the public state of the current turn.
func Status(state StatusState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <meta http-equiv="refresh" content="3"/>
    <title>Wavelength</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Wavelength</span>
        <h1>Room `)
		b.WriteString(esc(state.RoomCode))
		b.WriteString(`</h1>
        <p>Join at <code>`)
		b.WriteString(esc(state.JoinURL))
		b.WriteString(`</code></p>
        <img src="/qr.png" alt="Join QR code" width="192" height="192"/>
      </header>
      <section class="panel">
        <h2>Phase: `)
		b.WriteString(esc(state.Phase))
		b.WriteString(`</h2>`)
		if state.TurnLabel != "" {
			b.WriteString(`
        <p class="turn">`)
			b.WriteString(esc(state.TurnLabel))
			b.WriteString(` presented by <strong>`)
			b.WriteString(esc(state.Presenter))
			b.WriteString(`</strong></p>
        <p class="card">`)
			b.WriteString(esc(state.Card))
			b.WriteString(`</p>
        <p class="clue">Clue: `)
			b.WriteString(esc(state.Clue))
			b.WriteString(`</p>
        <p class="estimate">Estimate: `)
			b.WriteString(formatPosition(state.Estimate))
			b.WriteString(`</p>`)
			if state.Revealed {
				b.WriteString(`
        <p class="reveal">Target: `)
				b.WriteString(formatPosition(state.Target))
				b.WriteString(` (+`)
				b.WriteString(itoa(state.Points))
				b.WriteString(`)</p>`)
			}
		}
		if !state.Deadline.IsZero() {
			b.WriteString(`
        <p class="deadline">Time runs out at `)
			b.WriteString(formatTime(state.Deadline))
			b.WriteString(`</p>`)
		}
		b.WriteString(`
      </section>
      <section class="panel">
        <h2>Participants</h2>
        <ul class="roster">`)
		for _, p := range state.Roster {
			b.WriteString(`
          <li style="color: `)
			b.WriteString(esc(p.Color))
			b.WriteString(`">`)
			b.WriteString(esc(p.Avatar))
			b.WriteString(` `)
			b.WriteString(esc(p.Identity))
			if p.Authority {
				b.WriteString(` (host)`)
			}
			if p.Submitted {
				b.WriteString(` ✓ clues`)
			}
			if p.Ready {
				b.WriteString(` ✓ ready`)
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`
        </ul>
      </section>`)
		if state.ShowScores {
			b.WriteString(`
      <section class="panel">
        <h2>Score: `)
			b.WriteString(itoa(state.Total))
			b.WriteString(`</h2>`)
			if state.Rating != "" {
				b.WriteString(`
        <p class="rating">`)
				b.WriteString(esc(state.Rating))
				b.WriteString(`</p>`)
			}
			if state.Scoring == "presenter" {
				b.WriteString(`
        <ol class="standings">`)
				for _, s := range state.Standings {
					b.WriteString(`
          <li>`)
					b.WriteString(esc(s.Identity))
					b.WriteString(`: `)
					b.WriteString(itoa(s.Points))
					b.WriteString(`</li>`)
				}
				b.WriteString(`
        </ol>`)
			}
			b.WriteString(`
      </section>`)
		}
		b.WriteString(`
    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
