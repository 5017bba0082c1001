// Package tiles holds the click-driven interaction state for the project grid.
//
// A Machine is built once from the project registry and a Mode. Every
// interaction is a pure transition: Apply takes the current State and an Event
// and returns the next State plus any Effect that must reach the browser.
package tiles

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNoProjects     = errors.New("tiles: no projects")
	ErrUnknownMode    = errors.New("tiles: unknown mode")
	ErrInvalidProject = errors.New("tiles: invalid project")
)

// Mode selects how tiles react to clicks.
type Mode string

const (
	// ModeLens opens a project on the third click of its lens.
	ModeLens Mode = "lens"
	// ModeArm solves a tile on the second click.
	ModeArm Mode = "arm"
	// ModePassword asks for the project's password on the second click.
	ModePassword Mode = "password"
)

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLens, ModeArm, ModePassword:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Project is one entry of the portfolio.
//
// Password is a cosmetic gate, not a credential: it ships in plain config and
// is compared verbatim.
type Project struct {
	Title       string `yaml:"title" json:"title"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description"`
	Password    string `yaml:"password,omitempty" json:"-"`
}

// Gated reports whether the project sits behind the password popup.
func (p Project) Gated() bool { return p.Password != "" }

// Label is the single-line, lower-case form of the title.
func (p Project) Label() string {
	return strings.ToLower(strings.ReplaceAll(p.Title, "\n", " "))
}

func (p Project) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidProject)
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidProject, p.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q is not an http(s) url", ErrInvalidProject, p.URL)
	}
	return nil
}

// Phase is where a single tile sits in its lifecycle.
type Phase int

const (
	Unarmed Phase = iota
	Armed
	Solved
)

func (p Phase) String() string {
	switch p {
	case Unarmed:
		return "unarmed"
	case Armed:
		return "armed"
	case Solved:
		return "solved"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// logoWrap is the click count that reveals the banner and resets the counter.
const logoWrap = 5

// lensClicks is the number of clicks a lens needs before it opens.
const lensClicks = 3

// NoTile marks the absence of an active or targeted tile.
const NoTile = -1
