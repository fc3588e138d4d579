package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withWire(fn WireFunc) func() {
	oldWire := wire
	oldPipeline, oldSettings, oldChanges := pipeline, settingsService, changeSource
	wire = fn
	return func() {
		wire = oldWire
		pipeline, settingsService, changeSource = oldPipeline, oldSettings, oldChanges
		closeServices = nil
		opts = Options{}
	}
}

func TestSetup_WiresServicesFromFlags(t *testing.T) {
	var got Options
	m := &mockPipeline{}
	defer withWire(func(_ context.Context, o Options) (*Services, error) {
		got = o
		return &Services{Pipeline: m}, nil
	})()

	_, err := execute(t, "--export", "in/messages.html", "--catalog", "out.json", "build")

	require.NoError(t, err)
	assert.Equal(t, "in/messages.html", got.ExportPath)
	assert.Equal(t, "out.json", got.CatalogPath)
	assert.False(t, got.SettingsOnly)
	assert.Equal(t, []string{"build"}, m.calls)
}

func TestSetup_ConfigCommandsAskForSettingsOnly(t *testing.T) {
	var got Options
	defer withWire(func(_ context.Context, o Options) (*Services, error) {
		got = o
		return &Services{Settings: newMockSettings()}, nil
	})()

	_, err := execute(t, "config", "keys")

	require.NoError(t, err)
	assert.True(t, got.SettingsOnly)
}

func TestSetup_VersionSkipsWire(t *testing.T) {
	called := false
	defer withWire(func(_ context.Context, _ Options) (*Services, error) {
		called = true
		return nil, errors.New("unreachable")
	})()

	_, err := execute(t, "version")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestSetup_WireError(t *testing.T) {
	defer withWire(func(_ context.Context, _ Options) (*Services, error) {
		return nil, errors.New("open ledger: locked")
	})()

	_, err := execute(t, "build")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open ledger")
}

func TestExecute_ClosesServices(t *testing.T) {
	closed := 0
	defer withWire(func(_ context.Context, _ Options) (*Services, error) {
		return &Services{
			Pipeline: &mockPipeline{},
			Close: func() error {
				closed++
				return nil
			},
		}, nil
	})()

	rootCmd.SetArgs([]string{"build"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute())
	assert.Equal(t, 1, closed)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
