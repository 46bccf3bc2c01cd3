package persona

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	p, err := Load("", nil)
	require.NoError(t, err)
	assert.Contains(t, p.Prompt(), "digital twin")
	assert.Equal(t, Default(), p.Prompt())
	require.NoError(t, p.Watch(context.Background()))
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.md")
	require.NoError(t, os.WriteFile(path, []byte("  be brief  \n"), 0o600))

	p, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "be brief", p.Prompt())

	_, err = Load(filepath.Join(t.TempDir(), "missing.md"), nil)
	require.Error(t, err)
}

func TestReload_KeepsPromptOnEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.md")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o600))
	p, err := Load(path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("   "), 0o600))
	require.Error(t, p.Reload())
	assert.Equal(t, "first", p.Prompt())
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.md")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o600))
	p, err := Load(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o600))
	require.Eventually(t, func() bool { return p.Prompt() == "second" }, 5*time.Second, 20*time.Millisecond)
}
