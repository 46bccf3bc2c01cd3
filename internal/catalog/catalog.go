// Package catalog holds the read-only content shown by the terminal: the
// command list, projects, tracks, themes and resume.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var catalogTOML []byte

// Command is a help-panel entry.
type Command struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Link is an extra labelled project link.
type Link struct {
	Label string `toml:"label"`
	URL   string `toml:"url"`
}

// Project is a work-panel entry.
type Project struct {
	Name        string   `toml:"name"`
	Brief       string   `toml:"brief"`
	Description []string `toml:"description"`
	Tech        string   `toml:"tech"`
	Link        string   `toml:"link"`
	Repo        string   `toml:"repo"`
	Extra       []Link   `toml:"extra"`
}

// PrivateRepo marks a repository that is only shared on request.
const PrivateRepo = "ask-to-get-access"

// Links returns the project's openable links in display order. A private repo
// is listed with an empty URL so numbering stays stable.
func (p Project) Links() []Link {
	var links []Link
	if p.Link != "" {
		links = append(links, Link{Label: "Live", URL: p.Link})
	}
	if p.Repo != "" {
		if p.Repo == PrivateRepo {
			links = append(links, Link{Label: "Repo"})
		} else {
			links = append(links, Link{Label: "GitHub", URL: p.Repo})
		}
	}
	return append(links, p.Extra...)
}

// Track is a music-panel entry.
type Track struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	URL         string `toml:"url"`
}

// Theme is a terminal color scheme.
type Theme struct {
	Name       string `toml:"name"`
	Foreground string `toml:"foreground"`
	Accent     string `toml:"accent"`
	Dim        string `toml:"dim"`
}

// Catalog is the full static content set.
type Catalog struct {
	Commands []Command `toml:"commands"`
	Projects []Project `toml:"projects"`
	Tracks   []Track   `toml:"tracks"`
	Themes   []Theme   `toml:"themes"`
	Resume   Resume    `toml:"-"`
}

// Theme looks up a theme by case-insensitive name.
func (c *Catalog) Theme(name string) (Theme, bool) {
	for _, t := range c.Themes {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeNames returns the theme names in catalog order.
func (c *Catalog) ThemeNames() []string {
	names := make([]string, len(c.Themes))
	for i, t := range c.Themes {
		names[i] = t.Name
	}
	return names
}

// Parse decodes a catalog from TOML and attaches the built-in resume.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(c.Themes) == 0 {
		return nil, fmt.Errorf("catalog has no themes")
	}
	c.Resume = resumeData
	return &c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which can only happen on a broken build.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogTOML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
