package session

import "slices"

var (
	avatarPalette = []string{"🦊", "🐙", "🦉", "🐢", "🦄", "🐝", "🐳", "🦔"}
	colorPalette  = []string{
		"#ff6b6b",
		"#4dabf7",
		"#51cf66",
		"#ffa94d",
		"#ffd43b",
		"#845ef7",
		"#20c997",
		"#e64980",
	}
)

func pickAvatar(index int) string {
	if index < 0 {
		index = 0
	}
	return avatarPalette[index%len(avatarPalette)]
}

func pickColor(index int) string {
	if index < 0 {
		index = 0
	}
	return colorPalette[index%len(colorPalette)]
}

// Roster is the ordered participant list. Order is join order and drives
// the turn schedule.
type Roster struct {
	list []Participant
}

func (r *Roster) Len() int {
	return len(r.list)
}

func (r *Roster) Get(identity string) (Participant, bool) {
	for _, p := range r.list {
		if p.Identity == identity {
			return p, true
		}
	}
	return Participant{}, false
}

func (r *Roster) Has(identity string) bool {
	_, ok := r.Get(identity)
	return ok
}

func (r *Roster) ByHandle(handle Handle) (Participant, bool) {
	for _, p := range r.list {
		if p.Handle == handle {
			return p, true
		}
	}
	return Participant{}, false
}

// Add appends p unless its identity is already present. Missing display
// attributes are filled from the palettes.
func (r *Roster) Add(p Participant) bool {
	if p.Identity == "" || r.Has(p.Identity) {
		return false
	}
	if p.Avatar == "" {
		p.Avatar = pickAvatar(len(r.list))
	}
	if p.Color == "" {
		p.Color = pickColor(len(r.list))
	}
	r.list = append(r.list, p)
	return true
}

func (r *Roster) Remove(identity string) (Participant, bool) {
	idx := slices.IndexFunc(r.list, func(p Participant) bool { return p.Identity == identity })
	if idx < 0 {
		return Participant{}, false
	}
	p := r.list[idx]
	r.list = slices.Delete(r.list, idx, idx+1)
	return p, true
}

// RemoveHandle drops the participant bound to a remote link. The local
// participant is never matched.
func (r *Roster) RemoveHandle(handle Handle) (Participant, bool) {
	if handle == LocalHandle {
		return Participant{}, false
	}
	p, ok := r.ByHandle(handle)
	if !ok {
		return Participant{}, false
	}
	return r.Remove(p.Identity)
}

// Replace installs an authority snapshot wholesale.
func (r *Roster) Replace(list []Participant) {
	r.list = make([]Participant, 0, len(list))
	for _, p := range list {
		p.Handle = LocalHandle
		r.list = append(r.list, p)
	}
}

// Participants returns a copy safe to publish, with link handles cleared.
func (r *Roster) Participants() []Participant {
	out := slices.Clone(r.list)
	for i := range out {
		out[i].Handle = LocalHandle
	}
	return out
}

func (r *Roster) Identities() []string {
	ids := make([]string, 0, len(r.list))
	for _, p := range r.list {
		ids = append(ids, p.Identity)
	}
	return ids
}

// Remote lists participants reachable over a link.
func (r *Roster) Remote() []Participant {
	out := make([]Participant, 0, len(r.list))
	for _, p := range r.list {
		if p.Handle != LocalHandle {
			out = append(out, p)
		}
	}
	return out
}
