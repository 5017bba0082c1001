package main

import (
	"github.com/jfeuerstein/josh-space/internal/tiles"
)

type tileView struct {
	Index       int
	Title       string
	Description string
	Label       string
	Hint        string
	Phase       string
	Active      bool
	Solved      bool
}

type popupView struct {
	Title  string
	Input  string
	Error  bool
	Target string
}

type boardView struct {
	Variant   string
	Lens      bool
	Intro     string
	AllSolved bool
	Tiles     []tileView
	Popup     *popupView
}

type logoView struct {
	Art    string
	Banner bool
}

type pageView struct {
	SessionID string
	Tagline   string
	Footer    string
	Logo      logoView
	Board     boardView
}

func (s *server) board(st tiles.State) boardView {
	m := s.machine
	done := m.AllSolved(st)
	v := boardView{
		Variant:   string(m.Mode()),
		Lens:      m.Mode() == tiles.ModeLens,
		Intro:     s.text.Intro,
		AllSolved: done,
	}
	if done {
		v.Intro = s.text.IntroDone
	}
	for i, p := range m.Projects() {
		phase := m.Phase(st, i)
		v.Tiles = append(v.Tiles, tileView{
			Index:       i,
			Title:       p.Title,
			Description: p.Description,
			Label:       p.Label(),
			Hint:        m.Hint(st, i),
			Phase:       phase.String(),
			Active:      phase == tiles.Armed,
			Solved:      phase == tiles.Solved,
		})
	}
	if st.Popup.Visible {
		pv := &popupView{
			Title: s.text.PopupTitle,
			Input: st.Popup.Input,
			Error: st.Popup.Error,
		}
		if t := st.Popup.Target; t >= 0 && t < len(v.Tiles) {
			pv.Target = v.Tiles[t].Label
		}
		v.Popup = pv
	}
	return v
}

func (s *server) logo(banner bool) logoView {
	if banner {
		return logoView{Art: s.text.Banner, Banner: true}
	}
	return logoView{Art: s.text.Logo}
}
