package tiles

import "fmt"

// Machine applies events to states for a fixed project list.
type Machine struct {
	mode     Mode
	projects []Project
}

// New validates the registry and returns a Machine for it.
func New(mode Mode, projects []Project) (*Machine, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}
	for i, p := range projects {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("project %d: %w", i, err)
		}
	}
	return &Machine{
		mode:     mode,
		projects: append([]Project(nil), projects...),
	}, nil
}

func (m *Machine) Mode() Mode { return m.mode }

// Projects returns a copy of the registry.
func (m *Machine) Projects() []Project {
	return append([]Project(nil), m.projects...)
}

// Len is the number of tiles.
func (m *Machine) Len() int { return len(m.projects) }

// Initial is the state of a freshly loaded page.
func (m *Machine) Initial() State {
	return State{
		Active: NoTile,
		Solved: make([]bool, len(m.projects)),
		Focus:  make([]int, len(m.projects)),
		Popup:  closedPopup(),
	}
}

// Apply returns the state after ev and the effect it produced. The input
// state is never modified. Events that make no sense in the current state
// (an out-of-range index, a submit with no popup open) leave it unchanged.
func (m *Machine) Apply(s State, ev Event) (State, Effect) {
	s = m.fit(s)
	switch ev.Kind {
	case TileClick:
		if ev.Index < 0 || ev.Index >= len(m.projects) {
			return s, noEffect()
		}
		if m.mode == ModeLens {
			return m.focusLens(s, ev.Index)
		}
		return m.clickTile(s, ev.Index)
	case LogoClick:
		return clickLogo(s)
	case PasswordSubmit:
		return m.submit(s, ev.Input)
	case PasswordCancel:
		return cancel(s)
	}
	return s, noEffect()
}

// fit turns a zero or foreign State into one shaped for this registry. An
// unsized State is treated as a fresh page load; lens counts outside their
// range restart at 0.
func (m *Machine) fit(s State) State {
	n := len(m.projects)
	if len(s.Solved) == 0 {
		fresh := m.Initial()
		fresh.LogoClicks = s.LogoClicks
		return fresh
	}
	if len(s.Solved) == n && len(s.Focus) == n && focusInRange(s.Focus) {
		return s
	}
	c := s
	c.Solved = make([]bool, n)
	copy(c.Solved, s.Solved)
	c.Focus = make([]int, n)
	for i := range c.Focus {
		if i < len(s.Focus) && s.Focus[i] > 0 && s.Focus[i] < lensClicks {
			c.Focus[i] = s.Focus[i]
		}
	}
	return c
}

func focusInRange(focus []int) bool {
	for _, f := range focus {
		if f < 0 || f >= lensClicks {
			return false
		}
	}
	return true
}

func (m *Machine) clickTile(s State, i int) (State, Effect) {
	if s.Popup.Visible {
		return s, noEffect()
	}
	if s.IsSolved(i) {
		return s, Effect{OpenURL: m.projects[i].URL, SolvedIndex: NoTile}
	}
	next := s.clone()
	if s.Active != i {
		// A second armed tile replaces the first.
		next.Active = i
		return next, noEffect()
	}
	if m.mode == ModePassword && m.projects[i].Gated() {
		next.Popup = Popup{Visible: true, Target: i}
		return next, noEffect()
	}
	return solve(next, i)
}

func (m *Machine) focusLens(s State, i int) (State, Effect) {
	next := s.clone()
	next.Focus[i]++
	if next.Focus[i] < lensClicks {
		return next, noEffect()
	}
	next.Focus[i] = 0
	return next, Effect{OpenURL: m.projects[i].URL, SolvedIndex: NoTile}
}

func (m *Machine) submit(s State, input string) (State, Effect) {
	if !s.Popup.Visible || s.Popup.Target < 0 || s.Popup.Target >= len(m.projects) {
		return s, noEffect()
	}
	target := s.Popup.Target
	next := s.clone()
	if input != m.projects[target].Password {
		next.Popup.Input = input
		next.Popup.Error = true
		return next, noEffect()
	}
	next.Popup = closedPopup()
	return solve(next, target)
}

func solve(s State, i int) (State, Effect) {
	s.Solved[i] = true
	s.Active = NoTile
	return s, Effect{SolvedIndex: i}
}

func cancel(s State) (State, Effect) {
	if !s.Popup.Visible {
		return s, noEffect()
	}
	next := s.clone()
	next.Popup = closedPopup()
	next.Active = NoTile
	return next, noEffect()
}

func clickLogo(s State) (State, Effect) {
	next := s.clone()
	next.LogoClicks++
	if next.LogoClicks < logoWrap {
		return next, noEffect()
	}
	next.LogoClicks = 0
	return next, Effect{RevealBanner: true, SolvedIndex: NoTile}
}

// Phase reports the lifecycle phase of tile i.
func (m *Machine) Phase(s State, i int) Phase {
	s = m.fit(s)
	switch {
	case s.IsSolved(i):
		return Solved
	case s.Active == i:
		return Armed
	}
	return Unarmed
}

// AllSolved reports whether every tile has been solved. Lenses never solve.
func (m *Machine) AllSolved(s State) bool {
	return m.mode != ModeLens && s.SolvedCount() == len(m.projects)
}

// Hint is the short status line shown on tile i.
func (m *Machine) Hint(s State, i int) string {
	s = m.fit(s)
	if m.mode == ModeLens {
		if i < 0 || i >= len(s.Focus) {
			return lensHints[0]
		}
		return lensHints[s.Focus[i]]
	}
	switch m.Phase(s, i) {
	case Armed:
		return "[ aligning... ]"
	case Solved:
		return "[ solved ]"
	}
	return "[ click to align ]"
}

var lensHints = [lensClicks]string{
	"[ click to focus ]",
	"[ focusing... ]",
	"[ click to view ]",
}
