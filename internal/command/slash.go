package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/panel"
)

func (r *Registry) registerSlashCommands() {
	r.Register(&Command{Name: "/help", Aliases: []string{"help"}, Handler: showPanel(panel.Help)})
	r.Register(&Command{Name: "/about", Handler: showText(catalog.About)})
	r.Register(&Command{Name: "/work", Handler: showPanel(panel.Work)})
	r.Register(&Command{Name: "/music", Handler: showPanel(panel.Music)})
	r.Register(&Command{Name: "/contact", Handler: showText(catalog.ContactPanel)})
	r.Register(&Command{Name: "/skills", Handler: showText(catalog.SkillsPanel)})
	r.Register(&Command{Name: "/resume", Handler: handleResume})
	r.Register(&Command{Name: "/theme", Handler: handleTheme})
	r.Register(&Command{
		Name:    "/clear",
		Aliases: []string{"clear", "cls"},
		Handler: func(Env, []string) Outcome { return control(ClearTranscript) },
	})
	r.Register(&Command{
		Name:    "/reset",
		Handler: func(Env, []string) Outcome { return control(ResetConfirm) },
	})
}

func showPanel(k panel.Kind) Handler {
	return func(Env, []string) Outcome { return openPanel(k) }
}

func showText(text string) Handler {
	return func(Env, []string) Outcome { return display(text) }
}

const rule = "════════════════════════════════════════════"

func handleResume(env Env, args []string) Outcome {
	if len(args) == 0 {
		return openPanel(panel.Resume)
	}

	resume := env.Catalog.Resume
	switch format := strings.ToLower(args[0]); format {
	case "pdf":
		return display(catalog.ResumePDF)
	case "txt":
		return display(fmt.Sprintf("\n> Generating plain text resume...\n> Formatting complete.\n\n%s\n\n%s\n\n%s\n\n"+
			"> Download it with GET /resume?format=txt or type /resume pdf for the formatted version\n",
			rule, resume.Text(), rule))
	case "json":
		data, err := json.MarshalIndent(resume, "", "  ")
		if err != nil {
			return display(fmt.Sprintf("> Export failed: %v", err))
		}
		return display(fmt.Sprintf("\n> Exporting resume data as JSON...\n\n%s\n\n> Full JSON available at /resume?format=json\n", data))
	default:
		return display(fmt.Sprintf("Unknown format: %s\nAvailable formats: %s", format, strings.Join(panel.ResumeFormats, ", ")))
	}
}

func handleTheme(env Env, args []string) Outcome {
	if len(args) == 0 {
		return openPanel(panel.Theme)
	}
	theme, ok := env.Catalog.Theme(args[0])
	if !ok {
		return display(fmt.Sprintf("Unknown theme: %s\nAvailable themes: %s", args[0], strings.Join(env.Catalog.ThemeNames(), ", ")))
	}
	return applyTheme(theme.Name)
}
