package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	settings domain.Settings
	set      map[string]any
	saved    *domain.Settings
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultSettings(), set: map[string]any{}}
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(settings *domain.Settings) error {
	m.saved = settings
	return nil
}

func (m *mockSettings) Set(key string, value any) error {
	if key == "nope" {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"catalog.path", "export.path"}
}

func (m *mockSettings) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func setupSettingsTest(m *mockSettings) func() {
	oldSettings := settingsService
	settingsService = m
	return func() {
		settingsService = oldSettings
		configSetList = false
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		list     bool
		expected any
	}{
		{"Integer", "8", false, 8},
		{"Float", "2.5", false, 2.5},
		{"Bool", "true", false, true},
		{"Duration stays text", "750ms", false, "750ms"},
		{"Plain text", "catalog.json", false, "catalog.json"},
		{"List", "photos/, files/ ,", true, []string{"photos/", "files/"}},
		{"Empty list", "", true, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseValue(tt.raw, tt.list))
		})
	}
}

func TestConfigCmd_UsesSettingsOnly(t *testing.T) {
	for _, c := range []string{"config", "show", "set <key> <value>", "keys", "init"} {
		found := c == configCmd.Use
		for _, sub := range configCmd.Commands() {
			if sub.Use == c {
				found = true
				assert.Equal(t, "true", sub.Annotations[settingsOnly], c)
			}
		}
		assert.True(t, found, c)
	}
}

func TestConfigShow(t *testing.T) {
	m := newMockSettings()
	m.settings.Addresses = []string{"12 Market St"}
	defer setupSettingsTest(m)()

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Path: catalog.json")
	assert.Contains(t, out, "Media prefixes: photos/")
	assert.Contains(t, out, "Store addresses: 12 Market St")
	assert.Contains(t, out, "Provider: none")
	assert.NotContains(t, out, "Bucket:")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestConfigShow_InvalidSettings(t *testing.T) {
	m := newMockSettings()
	m.settings.Upload.Provider = domain.UploadProviderGCS
	defer setupSettingsTest(m)()

	out, err := execute(t, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "Bucket: ")
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "upload bucket is required")
}

func TestConfigSet(t *testing.T) {
	m := newMockSettings()
	defer setupSettingsTest(m)()

	out, err := execute(t, "config", "set", "upload.concurrency", "8")

	require.NoError(t, err)
	assert.Equal(t, 8, m.set["upload.concurrency"])
	assert.Contains(t, out, "Set upload.concurrency = 8")
}

func TestConfigSet_List(t *testing.T) {
	m := newMockSettings()
	defer setupSettingsTest(m)()

	_, err := execute(t, "config", "set", "--list", "filter.blacklist", "casino,loan")

	require.NoError(t, err)
	assert.Equal(t, []string{"casino", "loan"}, m.set["filter.blacklist"])
}

func TestConfigSet_UnknownKey(t *testing.T) {
	m := newMockSettings()
	defer setupSettingsTest(m)()

	_, err := execute(t, "config", "set", "nope", "1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigKeys(t *testing.T) {
	defer setupSettingsTest(newMockSettings())()

	out, err := execute(t, "config", "keys")

	require.NoError(t, err)
	assert.Equal(t, "catalog.path\nexport.path\n", out)
}

func TestConfigInit(t *testing.T) {
	m := newMockSettings()
	defer setupSettingsTest(m)()

	out, err := execute(t, "config", "init")

	require.NoError(t, err)
	require.NotNil(t, m.saved)
	assert.Equal(t, domain.DefaultSettings().Catalog.Path, m.saved.Catalog.Path)
	assert.Contains(t, out, "Default settings written.")
}

func TestConfigCmd_WithoutSettings(t *testing.T) {
	oldSettings := settingsService
	settingsService = nil
	defer func() { settingsService = oldSettings }()

	_, err := execute(t, "config", "keys")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
