package tiles

// Popup is the password overlay.
type Popup struct {
	Visible bool
	Target  int
	Input   string
	Error   bool
}

// State is everything one page load knows about the grid. Values are treated
// as immutable; transitions return copies.
type State struct {
	Active     int
	Solved     []bool
	Focus      []int
	LogoClicks int
	Popup      Popup
}

func (s State) clone() State {
	c := s
	c.Solved = append([]bool(nil), s.Solved...)
	c.Focus = append([]int(nil), s.Focus...)
	return c
}

// SolvedCount returns how many tiles are solved.
func (s State) SolvedCount() int {
	n := 0
	for _, ok := range s.Solved {
		if ok {
			n++
		}
	}
	return n
}

// IsSolved reports whether tile i is solved.
func (s State) IsSolved(i int) bool {
	return i >= 0 && i < len(s.Solved) && s.Solved[i]
}

func closedPopup() Popup {
	return Popup{Target: NoTile}
}

// EventKind enumerates the clicks the page can send.
type EventKind int

const (
	TileClick EventKind = iota
	LogoClick
	PasswordSubmit
	PasswordCancel
)

// Event is a single user interaction.
type Event struct {
	Kind  EventKind
	Index int
	Input string
}

func ClickTile(i int) Event { return Event{Kind: TileClick, Index: i} }
func ClickLogo() Event { return Event{Kind: LogoClick} }
func SubmitPassword(input string) Event { return Event{Kind: PasswordSubmit, Input: input} }
func CancelPassword() Event { return Event{Kind: PasswordCancel} }

// Effect is what a transition asks of the outside world.
type Effect struct {
	// OpenURL is opened in a new browsing context without opener or referrer.
	OpenURL string
	// RevealBanner shows the logo easter egg for this render only.
	RevealBanner bool
	// SolvedIndex is the tile solved by this transition, or NoTile.
	SolvedIndex int
}

func noEffect() Effect { return Effect{SolvedIndex: NoTile} }
