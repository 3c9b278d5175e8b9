package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
listenAddr: ":9000"
externalUrl: "ws://gateway.local:9000"
heartbeatInterval: 30s
sessionTtl: 90s
scenarios:
  simulateHeartbeatTimeout: true
bot:
  token: "abc123"
  applicationId: "100"
  userId: "200"
  name: "testbot"
  discriminator: "0001"
mockData:
  guilds: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval.Duration())
	assert.Equal(t, 90*time.Second, cfg.SessionTTL.Duration())
	assert.True(t, cfg.Scenarios.SimulateHeartbeatTimeout)
	assert.False(t, cfg.Scenarios.FailResume)
	assert.Equal(t, 3, cfg.MockData.Guilds)
	// Unset fields get defaults.
	assert.Equal(t, DefaultHandshakeTimeout, cfg.HandshakeTimeout.Duration())
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "bot": {"token": "abc", "applicationId": "1", "userId": "2", "name": "b", "discriminator": "0001"},
  "heartbeatInterval": 5000
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	// Bare integers are milliseconds.
	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval.Duration())
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadInvalidSyntax(t *testing.T) {
	_, err := Load(writeFile(t, "bad.json", "{broken"))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = Load(writeFile(t, "bad.yaml", "a: [unclosed"))
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Bot: Bot{Token: "t", ApplicationID: "1", UserID: "2"},
	}
	valid.ApplyDefaults()
	require.NoError(t, valid.Validate())

	missingToken := valid
	missingToken.Bot.Token = ""
	assert.ErrorIs(t, missingToken.Validate(), ErrMissingToken)

	missingIDs := valid
	missingIDs.Bot.UserID = ""
	assert.ErrorIs(t, missingIDs.Validate(), ErrMissingBotIDs)

	badInterval := valid
	badInterval.HeartbeatInterval = Duration(-time.Second)
	assert.ErrorIs(t, badInterval.Validate(), ErrInvalidInterval)
}

func TestBotReadyFragments(t *testing.T) {
	b := Bot{Token: "t", ApplicationID: "100", UserID: "200", Name: "bot", Discriminator: "0001"}

	user := b.User()
	assert.Equal(t, "200", user.ID)
	assert.True(t, user.Bot)
	assert.True(t, user.MFAEnabled)

	app := b.Application()
	assert.Equal(t, "100", app.ID)
}
