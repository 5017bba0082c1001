package main

import "github.com/jfeuerstein/josh-space/internal/tiles"

// Copy shown around the grid. Each variant keeps the wording it shipped with.
type siteText struct {
	Logo       string
	Banner     string
	Tagline    string
	Intro      string
	IntroDone  string
	Footer     string
	PopupTitle string
}

var (
	Logo = `┌─────────────┐
│ josh space  │
└─────────────┘`

	Footer = `┌────────────────────────────┐
│ built with the josh-thetic │
└────────────────────────────┘`

	PopupTitle = `┌────────────────────┐
│ enter password     │
└────────────────────┘`

	StarTagline = `*   '*
        *
        *
        *
        *
        *`

	LensBanner = `╔═══════════════════════╗
║  you found the lens!  ║
║   ⚙ josh-thetic ⚙    ║
╚═══════════════════════╝`

	TileBanner = `╔═══════════════════════════╗
║  stop clicking            ║
║     ⚙ josh-thetic ⚙       ║
╚═══════════════════════════╝`
)

func textFor(mode tiles.Mode) siteText {
	if mode == tiles.ModeLens {
		return siteText{
			Logo:       Logo,
			Banner:     LensBanner,
			Tagline:    "[ analog portfolio. digital projects. ]",
			Intro:      "focus through the lens to view each project",
			IntroDone:  "focus through the lens to view each project",
			Footer:     Footer,
			PopupTitle: PopupTitle,
		}
	}
	return siteText{
		Logo:       Logo,
		Banner:     TileBanner,
		Tagline:    StarTagline,
		Intro:      "welcome to my website",
		IntroDone:  "✓ all unlocked ✓",
		Footer:     Footer,
		PopupTitle: PopupTitle,
	}
}
