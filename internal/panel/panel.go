// Package panel implements the modal list/detail browsers (work, music,
// resume, theme, help) that take over keyboard input while open.
package panel

import (
	"github.com/Zachkp/crtfolio/internal/catalog"
)

// Kind identifies a browser.
type Kind int

const (
	None Kind = iota
	Work
	Music
	Resume
	Theme
	Help
)

func (k Kind) String() string {
	switch k {
	case Work:
		return "work"
	case Music:
		return "music"
	case Resume:
		return "resume"
	case Theme:
		return "theme"
	case Help:
		return "help"
	default:
		return "none"
	}
}

// State is the browser's position in its lifecycle.
type State int

const (
	Closed State = iota
	Listing
	Detail
)

// ActionKind tells the session what to do after a key was handled.
type ActionKind int

const (
	// ActNone means the key was ignored.
	ActNone ActionKind = iota
	// ActRender means the panel changed and must be re-rendered in place.
	ActRender
	// ActClose means the user backed out of the listing.
	ActClose
	// ActRun closes the panel and runs Command as if typed.
	ActRun
	// ActPlay closes the panel and starts Track.
	ActPlay
	// ActSetTheme closes the panel and applies Theme.
	ActSetTheme
	// ActOpenURL opens URL and keeps the panel where it is.
	ActOpenURL
)

// Action is the result of HandleKey.
type Action struct {
	Kind    ActionKind
	Command string
	Track   catalog.Track
	Theme   catalog.Theme
	URL     string
}

// ResumeFormats are the items of the resume browser.
var ResumeFormats = []string{"pdf", "txt", "json"}

// Panel is one open browser.
type Panel struct {
	kind     Kind
	state    State
	selected int
	cat      *catalog.Catalog
}

// Open returns a panel in the listing state with the first item highlighted.
func Open(kind Kind, cat *catalog.Catalog) *Panel {
	return &Panel{kind: kind, state: Listing, cat: cat}
}

func (p *Panel) Kind() Kind    { return p.kind }
func (p *Panel) State() State  { return p.state }
func (p *Panel) Selected() int { return p.selected }

// Len returns the number of selectable items.
func (p *Panel) Len() int {
	switch p.kind {
	case Work:
		return len(p.cat.Projects)
	case Music:
		return len(p.cat.Tracks)
	case Resume:
		return len(ResumeFormats)
	case Theme:
		return len(p.cat.Themes)
	case Help:
		return len(p.cat.Commands)
	default:
		return 0
	}
}

func (p *Panel) hasDetail() bool {
	return p.kind == Work
}

// HandleKey applies a bubbletea key name to the panel.
func (p *Panel) HandleKey(key string) Action {
	if p.state == Closed {
		return Action{}
	}
	if p.state == Detail {
		return p.handleDetailKey(key)
	}

	switch key {
	case "up", "k":
		if p.selected > 0 {
			p.selected--
			return Action{Kind: ActRender}
		}
	case "down", "j":
		if p.selected < p.Len()-1 {
			p.selected++
			return Action{Kind: ActRender}
		}
	case "enter":
		return p.choose(p.selected)
	case "esc", "q":
		p.state = Closed
		return Action{Kind: ActClose}
	default:
		if i, ok := digit(key); ok && i < p.Len() {
			p.selected = i
			return p.choose(i)
		}
	}
	return Action{}
}

func (p *Panel) handleDetailKey(key string) Action {
	switch key {
	case "esc", "q":
		p.state = Listing
		return Action{Kind: ActRender}
	}

	i, ok := digit(key)
	if !ok {
		return Action{}
	}
	links := p.cat.Projects[p.selected].Links()
	if i >= len(links) || links[i].URL == "" {
		return Action{}
	}
	return Action{Kind: ActOpenURL, URL: "https://" + links[i].URL}
}

func (p *Panel) choose(i int) Action {
	if p.Len() == 0 {
		return Action{}
	}
	if p.hasDetail() {
		p.state = Detail
		return Action{Kind: ActRender}
	}

	p.state = Closed
	switch p.kind {
	case Music:
		return Action{Kind: ActPlay, Track: p.cat.Tracks[i]}
	case Theme:
		return Action{Kind: ActSetTheme, Theme: p.cat.Themes[i]}
	case Resume:
		return Action{Kind: ActRun, Command: "/resume " + ResumeFormats[i]}
	case Help:
		return Action{Kind: ActRun, Command: p.cat.Commands[i].Name}
	}
	return Action{Kind: ActClose}
}

// digit maps "1".."9" to 0..8.
func digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '1'), true
}

// Render draws the panel in its current state.
func (p *Panel) Render() string {
	return Render(p.kind, p.cat, p.selected, p.state == Detail)
}
