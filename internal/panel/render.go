package panel

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Zachkp/crtfolio/internal/catalog"
)

const (
	boxInner   = 43
	titleInset = 14
)

// header draws the double-line title box used by every panel.
func header(title string) string {
	bar := strings.Repeat("═", boxInner)
	name := runewidth.FillRight(runewidth.Truncate(title, boxInner-titleInset, ""), boxInner-titleInset)
	return "╔" + bar + "╗\n" +
		"║" + strings.Repeat(" ", titleInset) + name + "║\n" +
		"╚" + bar + "╝\n\n"
}

func marker(selected bool) string {
	if selected {
		return "▶"
	}
	return " "
}

func quickKey(i int) string {
	if i < 9 {
		return fmt.Sprintf("[%d]", i+1)
	}
	return "   "
}

// Render draws a panel as a pure function of its kind, highlighted item and
// detail flag.
func Render(kind Kind, cat *catalog.Catalog, selected int, detail bool) string {
	switch kind {
	case Work:
		if detail {
			return renderProject(cat.Projects[selected])
		}
		return renderWork(cat, selected)
	case Music:
		return renderMusic(cat, selected)
	case Resume:
		return renderResume(selected)
	case Theme:
		return renderThemes(cat, selected)
	case Help:
		return renderHelp(cat, selected)
	}
	return ""
}

func renderWork(cat *catalog.Catalog, selected int) string {
	var b strings.Builder
	b.WriteString(header("WORK & PROJECTS"))
	for i, p := range cat.Projects {
		fmt.Fprintf(&b, "%s %s %s\n", marker(i == selected), quickKey(i), p.Name)
		if i == selected {
			fmt.Fprintf(&b, "     └─ %s\n", p.Brief)
		}
	}
	b.WriteString("\n> [↑/↓ or j/k] Navigate | [Enter] View details | [q/Esc] Exit")
	return b.String()
}

func renderProject(p catalog.Project) string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(p.Name)))
	for _, line := range p.Description {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	fmt.Fprintf(&b, "\n  Tech: %s\n\n", p.Tech)

	if links := p.Links(); len(links) > 0 {
		b.WriteString("\n  Links:\n")
		for i, l := range links {
			target := l.URL
			if target == "" {
				target = "[ask to get access]"
			}
			fmt.Fprintf(&b, "  [%d] %s → %s\n", i+1, l.Label, target)
		}
		b.WriteString("\n")
	}
	b.WriteString("> [q/Esc] Back to list")
	return b.String()
}

func renderMusic(cat *catalog.Catalog, selected int) string {
	var b strings.Builder
	b.WriteString(header("MUSIC"))
	for i, t := range cat.Tracks {
		fmt.Fprintf(&b, "%s %s %s\n", marker(i == selected), quickKey(i), t.Name)
		if i == selected {
			fmt.Fprintf(&b, "     └─ %s\n", t.Description)
		}
	}
	b.WriteString("\n> [↑/↓ or j/k] Navigate | [Enter] Play | [q/Esc] Exit")
	return b.String()
}

var resumeBlurbs = map[string]string{
	"pdf":  "Professional layout",
	"txt":  "Terminal-friendly",
	"json": "Machine readable",
}

func renderResume(selected int) string {
	var b strings.Builder
	b.WriteString(header("RESUME"))
	for i, f := range ResumeFormats {
		fmt.Fprintf(&b, "%s %s %s\n", marker(i == selected), quickKey(i), strings.ToUpper(f))
		if i == selected {
			fmt.Fprintf(&b, "     └─ %s\n", resumeBlurbs[f])
		}
	}
	b.WriteString("\n> [↑/↓ or j/k] Navigate | [Enter] Download | [q/Esc] Exit")
	return b.String()
}

func renderThemes(cat *catalog.Catalog, selected int) string {
	var b strings.Builder
	b.WriteString(header("THEMES"))
	for i, t := range cat.Themes {
		fmt.Fprintf(&b, "%s %s %s\n", marker(i == selected), quickKey(i), t.Name)
	}
	b.WriteString("\n> [↑/↓ or j/k] Navigate | [Enter] Apply | [q/Esc] Exit")
	return b.String()
}

func renderHelp(cat *catalog.Catalog, selected int) string {
	width := 0
	for _, c := range cat.Commands {
		width = max(width, runewidth.StringWidth(c.Name))
	}

	var b strings.Builder
	b.WriteString(header("COMMANDS"))
	for i, c := range cat.Commands {
		fmt.Fprintf(&b, "%s %s %s  %s\n",
			marker(i == selected), quickKey(i), runewidth.FillRight(c.Name, width), c.Description)
	}
	b.WriteString("\n> [↑/↓ or j/k] Navigate | [Enter] Execute | [q/Esc] Exit")
	return b.String()
}
