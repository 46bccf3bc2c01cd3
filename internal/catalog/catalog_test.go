package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c := Default()

	require.NotEmpty(t, c.Commands)
	require.NotEmpty(t, c.Projects)
	require.NotEmpty(t, c.Tracks)
	require.NotEmpty(t, c.Themes)
	require.Equal(t, "Gorka Molero", c.Resume.Name)
	require.Same(t, c, Default(), "Default should return the shared catalog")
}

func TestParse_RejectsEmptyThemes(t *testing.T) {
	_, err := Parse([]byte(`[[commands]]
name = "/help"
`))
	require.Error(t, err)
}

func TestParse_RejectsInvalidTOML(t *testing.T) {
	_, err := Parse([]byte(`[[themes`))
	require.Error(t, err)
}

func TestTheme_CaseInsensitive(t *testing.T) {
	c := Default()

	theme, ok := c.Theme("AMBER")
	require.True(t, ok)
	require.Equal(t, "amber", theme.Name)

	_, ok = c.Theme("nope")
	require.False(t, ok)
}

func TestProjectLinks(t *testing.T) {
	c := Default()
	byName := map[string]Project{}
	for _, p := range c.Projects {
		byName[p.Name] = p
	}

	degens := byName["Degens in Space"].Links()
	require.Len(t, degens, 2)
	require.Equal(t, "degens.space", degens[0].URL)
	require.Empty(t, degens[1].URL, "private repo has no URL")

	codex := byName["Codex"].Links()
	require.Len(t, codex, 2)
	require.Equal(t, "GitHub", codex[0].Label)
	require.Equal(t, "Tantras", codex[1].Label)

	require.Empty(t, byName["Music Production"].Links())
}

func TestResumeText(t *testing.T) {
	text := Default().Resume.Text()

	require.True(t, strings.HasPrefix(text, "GORKA MOLERO\n"))
	require.Contains(t, text, "EXPERIENCE")
	require.Contains(t, text, "Web Developer | Roadie")
	require.Contains(t, text, "• Grew company to 20K MRR within 6 months")
	require.Contains(t, text, "AI/ML: Vercel AI SDK, LangChain, OpenAI API")
	require.Contains(t, text, "Specialization in Sound Engineering and Mixing")
	require.True(t, strings.HasSuffix(text, "Smashing Conference - Christian Heilmann, Jonathan Snook"))
}
