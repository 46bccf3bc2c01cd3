package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/panel"
	"github.com/Zachkp/crtfolio/internal/transcript"
)

var fixedNow = time.Date(2025, 7, 7, 7, 7, 7, 0, time.UTC)

func newController(t testing.TB, policy Policy) *Controller {
	t.Helper()
	return New(Options{
		Catalog:      catalog.Default(),
		Now:          func() time.Time { return fixedNow },
		City:         "Madrid",
		Restore:      policy,
		HistoryTurns: 10,
	})
}

// finishBoot runs the boot animation to the history check.
func finishBoot(t testing.TB, c *Controller) {
	t.Helper()
	for range 10_000 {
		if effects := c.BootTick(); len(effects) > 0 {
			require.Equal(t, []Effect{LoadHistory{}}, effects)
			return
		}
	}
	t.Fatal("boot never finished")
}

func ready(t testing.TB) *Controller {
	t.Helper()
	c := newController(t, PolicyPrompt)
	finishBoot(t, c)
	c.HistoryLoaded(nil)
	require.Equal(t, ModeReady, c.Mode())
	return c
}

func submit(c *Controller, line string) []Effect {
	c.Type(line)
	return c.Key("enter")
}

func last(t testing.TB, c *Controller) transcript.Entry {
	t.Helper()
	entries := c.Entries()
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

func TestBoot_RevealsScriptThenLoadsHistory(t *testing.T) {
	c := newController(t, PolicyPrompt)
	assert.Equal(t, ModeBooting, c.Mode())

	c.BootTick()
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, ">", c.Entries()[0].Text)

	assert.Nil(t, c.Key("enter"), "input is locked while booting")
	c.Type("hi")
	assert.Empty(t, c.Input())

	finishBoot(t, c)
	texts := []string{}
	for _, e := range c.Entries() {
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{
		"> connection established",
		"> you've found the terminal",
		"> another visitor from MADRID",
		"> speak",
	}, texts)
	assert.Nil(t, c.BootTick(), "history is requested once")
	assert.False(t, c.Booted())

	c.HistoryLoaded(nil)
	assert.True(t, c.Booted())
	assert.Equal(t, ModeReady, c.Mode())
}

func TestRestorePrompt(t *testing.T) {
	saved := []transcript.Entry{transcript.In("> hello"), transcript.Out("> hi")}

	c := newController(t, PolicyPrompt)
	finishBoot(t, c)
	c.HistoryLoaded(saved)
	require.Equal(t, ModeRestorePrompt, c.Mode())
	assert.Equal(t, RestoreQuestion, last(t, c).Text)

	submit(c, "3")
	assert.Equal(t, InvalidOption, last(t, c).Text)
	assert.Equal(t, ModeRestorePrompt, c.Mode())

	submit(c, "1")
	assert.Equal(t, ModeReady, c.Mode())
	assert.Equal(t, append(saved, transcript.Out(Restored)), c.Entries())

	c = newController(t, PolicyPrompt)
	finishBoot(t, c)
	c.HistoryLoaded(saved)
	submit(c, "2")
	assert.Equal(t, ModeReady, c.Mode())
	assert.Equal(t, StartedNew, last(t, c).Text)
	assert.Equal(t, "> another visitor from MADRID", c.Entries()[2].Text)
}

func TestRestorePolicies(t *testing.T) {
	saved := []transcript.Entry{transcript.In("> hello"), transcript.Out("> hi")}

	auto := newController(t, PolicyAuto)
	finishBoot(t, auto)
	auto.HistoryLoaded(saved)
	assert.Equal(t, ModeReady, auto.Mode())
	assert.Equal(t, append(saved, transcript.Out(Restored)), auto.Entries())

	never := newController(t, PolicyNever)
	finishBoot(t, never)
	never.HistoryLoaded(saved)
	assert.Equal(t, ModeReady, never.Mode())
	assert.Len(t, never.Entries(), 4)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" AUTO ")
	require.NoError(t, err)
	assert.Equal(t, PolicyAuto, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPrompt, p)

	_, err = ParsePolicy("sometimes")
	require.Error(t, err)
}

func TestClearEmptiesTranscript(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := ready(t)
		for _, line := range rapid.SliceOfN(rapid.SampledFrom([]string{"ls", "pwd", "/about", "echo hi", "/skills"}), 0, 20).Draw(rt, "lines") {
			submit(c, line)
		}
		submit(c, rapid.SampledFrom([]string{"/clear", "clear", "cls"}).Draw(rt, "clear"))
		if n := len(c.Entries()); n != 0 {
			rt.Fatalf("transcript has %d entries after clear", n)
		}
	})
}

func TestEchoAndDisplay(t *testing.T) {
	c := ready(t)
	before := c.Revision()
	submit(c, "  pwd  ")
	entries := c.Entries()
	assert.Equal(t, transcript.In("> pwd"), entries[len(entries)-2])
	assert.Equal(t, transcript.Entry{Kind: transcript.Output, Text: "/home/gorka/terminal", Animated: true}, entries[len(entries)-1])
	assert.Greater(t, c.Revision(), before)
	assert.True(t, c.Interacted())
}

func TestForwardsFreeTextToChat(t *testing.T) {
	c := ready(t)
	effects := submit(c, "hello")
	require.Len(t, effects, 1)
	send, ok := effects[0].(SendChat)
	require.True(t, ok)
	assert.Equal(t, chat.Message{Role: chat.RoleUser, Content: "hello"}, send.Messages[len(send.Messages)-1])
	assert.Equal(t, chat.RoleUser, send.Messages[0].Role)
	assert.True(t, c.Waiting())
}

func TestStreamingMutatesOneEntry(t *testing.T) {
	c := ready(t)
	submit(c, "what do you build?")
	n := len(c.Entries())

	c.StreamUpdate("I")
	c.StreamUpdate("I build")
	c.StreamUpdate("I build things.")
	c.StreamDone()

	require.Len(t, c.Entries(), n+1)
	assert.Equal(t, transcript.Out("> I build things."), last(t, c))
	assert.False(t, c.Waiting())

	c.StreamUpdate("late")
	assert.Len(t, c.Entries(), n+1, "updates after completion are ignored")
}

func TestStreamingProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := ready(t)
		submit(c, "hello")
		n := len(c.Entries())

		updates := rapid.SliceOf(rapid.StringMatching(`[a-z ]{0,8}`)).Draw(rt, "updates")
		full := ""
		for _, u := range updates {
			full += u
			c.StreamUpdate(full)
		}
		if rapid.Bool().Draw(rt, "fails") {
			c.StreamFailed("boom")
		} else {
			c.StreamDone()
		}

		if got := len(c.Entries()); got > n+1 {
			rt.Fatalf("chat turn added %d entries", got-n)
		}
		if c.Waiting() {
			rt.Fatal("still waiting after the stream ended")
		}
	})
}

func TestStreamFailed(t *testing.T) {
	c := ready(t)
	submit(c, "hello")
	n := len(c.Entries())
	c.StreamFailed("chat provider credential is not set")
	require.Len(t, c.Entries(), n+1)
	assert.Equal(t, "> Error: chat provider credential is not set", last(t, c).Text)

	submit(c, "again")
	c.StreamUpdate("par")
	c.StreamFailed("connection reset")
	assert.Equal(t, "> Error: connection reset", last(t, c).Text)
	assert.Equal(t, "> again", c.Entries()[len(c.Entries())-2].Text)
	assert.False(t, c.Waiting())
}

func TestCapitalizedSentenceGoesToChat(t *testing.T) {
	c := ready(t)
	n := len(c.Entries())

	effects := submit(c, "Clear skies in Madrid today?")

	require.Len(t, effects, 1)
	assert.IsType(t, SendChat{}, effects[0])
	assert.True(t, c.Waiting())
	require.Len(t, c.Entries(), n+1)
	assert.Equal(t, "> Clear skies in Madrid today?", last(t, c).Text)
}

func TestEscWhileWaitingKeepsReply(t *testing.T) {
	c := ready(t)
	submit(c, "hello")
	c.StreamUpdate("Hel")
	rev := c.Revision()

	assert.Nil(t, c.Key("esc"))
	assert.True(t, c.Waiting())
	assert.Equal(t, rev, c.Revision())
	assert.Equal(t, "> Hel", last(t, c).Text)

	c.StreamUpdate("Hello")
	c.StreamDone()
	assert.Equal(t, "> Hello", last(t, c).Text)
}

func TestKeysLockedWhileWaiting(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := ready(t)
		submit(c, "hello")
		c.Type("")
		before := c.Entries()
		rev := c.Revision()

		keys := rapid.SliceOf(rapid.SampledFrom([]string{
			"enter", "backspace", "up", "down", "ctrl+l", "ctrl+u", "a", "/", "1", "space", "q",
		})).Draw(rt, "keys")
		for _, k := range keys {
			if effects := c.Key(k); effects != nil {
				rt.Fatalf("key %q produced effects while waiting", k)
			}
			c.Type(k)
		}
		if c.Input() != "" || c.Revision() != rev || len(c.Entries()) != len(before) {
			rt.Fatal("keys changed state while waiting")
		}
		c.Key("esc")
		if !c.Waiting() {
			rt.Fatal("esc must not cancel the stream")
		}
	})
}

func TestMusicThenEscRevertsLastEntry(t *testing.T) {
	c := ready(t)
	submit(c, "/music")
	require.Equal(t, ModePanel, c.Mode())
	require.NotNil(t, c.Panel())
	assert.Contains(t, last(t, c).Text, "MUSIC")

	c.Key("esc")
	assert.Equal(t, ModeReady, c.Mode())
	assert.Nil(t, c.Panel())
	assert.Equal(t, transcript.In("> /music"), last(t, c))
}

func TestAtMostOnePanel(t *testing.T) {
	kinds := []string{"/work", "/music", "/resume", "/theme", "/help"}
	rapid.Check(t, func(rt *rapid.T) {
		c := ready(t)
		base := len(c.Entries())
		opened := 0
		for _, cmd := range rapid.SliceOfN(rapid.SampledFrom(kinds), 1, 6).Draw(rt, "panels") {
			// a panel only hands focus back on esc, so reopen from the run path
			if c.Mode() == ModePanel {
				c.Key("esc")
			}
			submit(c, cmd)
			opened++
			if c.Mode() != ModePanel || c.Panel() == nil {
				rt.Fatalf("%s did not open a panel", cmd)
			}
		}
		// one echo per command plus exactly one panel render
		if got := len(c.Entries()); got != base+opened+1 {
			rt.Fatalf("got %d entries, want %d", got, base+opened+1)
		}
	})
}

func TestPanelActionReplacesOpenPanel(t *testing.T) {
	c := ready(t)
	submit(c, "/help")
	require.Equal(t, panel.Help, c.Panel().Kind())

	c.Key("down")
	c.Key("down")
	c.Key("enter") // /work from the help list
	require.Equal(t, panel.Work, c.Panel().Kind())

	n := 0
	for _, e := range c.Entries() {
		if e.Kind == transcript.Output && len(e.Text) > 0 && e.Text[0] == 0xe2 {
			n++
		}
	}
	assert.Equal(t, 1, n, "only the work panel is rendered")
	assert.Equal(t, transcript.In("> /work"), c.Entries()[len(c.Entries())-2])
}

func TestPanelRerendersInPlace(t *testing.T) {
	c := ready(t)
	submit(c, "/work")
	n := len(c.Entries())
	first := last(t, c).Text

	c.Key("down")
	assert.Len(t, c.Entries(), n)
	assert.NotEqual(t, first, last(t, c).Text)

	c.Key("enter")
	assert.Equal(t, panel.Detail, c.Panel().State())
	effects := c.Key("1")
	require.Len(t, effects, 1)
	assert.Equal(t, OpenURL{URL: "https://" + catalog.Default().Projects[1].Links()[0].URL}, effects[0])

	c.Key("q")
	assert.Equal(t, panel.Listing, c.Panel().State())
	c.Key("q")
	assert.Equal(t, ModeReady, c.Mode())
	assert.Len(t, c.Entries(), n-1)
}

func TestMusicPanelPlays(t *testing.T) {
	c := ready(t)
	submit(c, "/music")
	effects := c.Key("enter")
	track := catalog.Default().Tracks[0]
	assert.Equal(t, []Effect{OpenURL{URL: track.URL}}, effects)
	assert.Equal(t, "> ♪ Now playing: "+track.Name, last(t, c).Text)
	assert.Equal(t, ModeReady, c.Mode())
}

func TestThemes(t *testing.T) {
	c := ready(t)
	assert.Equal(t, "phosphor", c.Theme().Name)

	effects := submit(c, "/theme amber")
	amber, _ := catalog.Default().Theme("amber")
	assert.Equal(t, []Effect{SetTheme{Theme: amber}}, effects)
	assert.Equal(t, "amber", c.Theme().Name)

	submit(c, "/theme")
	effects = c.Key("3")
	ice := catalog.Default().Themes[2]
	assert.Equal(t, []Effect{SetTheme{Theme: ice}}, effects)
	assert.Equal(t, "> Theme set to "+ice.Name+".", last(t, c).Text)
}

func TestResumePanelRunsFormat(t *testing.T) {
	c := ready(t)
	submit(c, "/resume")
	c.Key("2")
	entries := c.Entries()
	assert.Equal(t, transcript.In("> /resume txt"), entries[len(entries)-2])
	assert.Contains(t, last(t, c).Text, "GORKA MOLERO")
}

func TestReset(t *testing.T) {
	c := ready(t)
	submit(c, "pwd")
	submit(c, "/reset")
	require.Equal(t, ModeResetConfirm, c.Mode())
	assert.Equal(t, ResetQuestion, last(t, c).Text)

	assert.Nil(t, submit(c, "n"))
	assert.Equal(t, ResetCancelled, last(t, c).Text)
	assert.Equal(t, ModeReady, c.Mode())

	submit(c, "/reset")
	effects := submit(c, "YES")
	assert.Equal(t, []Effect{ClearStorage{}}, effects)
	assert.Equal(t, []transcript.Entry{transcript.Out(ResetDone)}, c.Entries())
}

func TestCommandHistoryNavigation(t *testing.T) {
	c := ready(t)
	submit(c, "pwd")
	submit(c, "whoami")
	submit(c, "whoami")

	c.Key("up")
	assert.Equal(t, "whoami", c.Input())
	c.Key("up")
	assert.Equal(t, "pwd", c.Input())
	c.Key("up")
	assert.Equal(t, "pwd", c.Input())
	c.Key("down")
	assert.Equal(t, "whoami", c.Input())
	c.Key("down")
	assert.Empty(t, c.Input())

	submit(c, "history")
	assert.Equal(t, "    1  pwd\n    2  whoami\n    3  history", last(t, c).Text)
}

func TestLineEditing(t *testing.T) {
	c := ready(t)
	c.Type("año")
	c.Key("backspace")
	assert.Equal(t, "añ", c.Input())
	c.Key("space")
	c.Key("x")
	assert.Equal(t, "añ x", c.Input())
	c.Key("ctrl+u")
	assert.Empty(t, c.Input())

	submit(c, "pwd")
	c.Key("ctrl+l")
	assert.Empty(t, c.Entries())
}
