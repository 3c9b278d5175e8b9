package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gatewaymock/gatewaymock/pkg/protocol"
)

// Validation errors.
var (
	ErrMissingToken      = errors.New("bot token is required")
	ErrMissingBotIDs     = errors.New("bot application id and user id are required")
	ErrInvalidInterval   = errors.New("heartbeat interval must be positive")
	ErrInvalidTimeout    = errors.New("handshake timeout must be positive")
	ErrInvalidSessionTTL = errors.New("session ttl must be positive")
)

// Defaults applied by Load for fields left unset.
const (
	// DefaultHeartbeatInterval matches the interval the real gateway
	// advertises.
	DefaultHeartbeatInterval = 41250 * time.Millisecond
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultSessionTTL        = 3 * time.Minute
	DefaultListenAddr        = ":8400"
)

// Config is the full configuration surface of the gateway mock.
type Config struct {
	// ListenAddr is the address the WebSocket server binds to.
	ListenAddr string `json:"listenAddr" yaml:"listenAddr"`
	// ExternalURL is the address clients are told to resume against.
	ExternalURL string `json:"externalUrl" yaml:"externalUrl"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	// LogFormat is text or json.
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`

	// HeartbeatInterval is advertised in Hello and enforced by the monitor.
	HeartbeatInterval Duration `json:"heartbeatInterval,omitempty" yaml:"heartbeatInterval,omitempty"`
	// HandshakeTimeout bounds the wait for Identify/Resume after Hello.
	HandshakeTimeout Duration `json:"handshakeTimeout,omitempty" yaml:"handshakeTimeout,omitempty"`
	// SessionTTL bounds how long a session stays resumable without activity.
	SessionTTL Duration `json:"sessionTtl,omitempty" yaml:"sessionTtl,omitempty"`

	// ScriptPath points at the behavior script shared by all connections.
	// Empty means no script.
	ScriptPath string `json:"scriptPath,omitempty" yaml:"scriptPath,omitempty"`

	Scenarios Scenarios `json:"scenarios" yaml:"scenarios"`
	Bot       Bot       `json:"bot" yaml:"bot"`
	MockData  MockData  `json:"mockData" yaml:"mockData"`
}

// Scenarios are deliberate protocol deviations, read once per connection.
type Scenarios struct {
	// SimulateHeartbeatTimeout withholds heartbeat acks so the connection
	// times out even against a correct client.
	SimulateHeartbeatTimeout bool `json:"simulateHeartbeatTimeout" yaml:"simulateHeartbeatTimeout"`
	// FailResume makes every Resume fail with Invalid Session.
	FailResume bool `json:"failResume" yaml:"failResume"`
}

// Bot is the static identity presented in Ready and validated on Identify.
type Bot struct {
	Token            string                    `json:"token" yaml:"token"`
	ApplicationID    string                    `json:"applicationId" yaml:"applicationId"`
	ApplicationFlags protocol.ApplicationFlags `json:"applicationFlags" yaml:"applicationFlags"`
	UserID           string                    `json:"userId" yaml:"userId"`
	Name             string                    `json:"name" yaml:"name"`
	Discriminator    string                    `json:"discriminator" yaml:"discriminator"`
	Avatar           string                    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	UserFlags        int64                     `json:"userFlags,omitempty" yaml:"userFlags,omitempty"`
	PublicFlags      int64                     `json:"publicFlags,omitempty" yaml:"publicFlags,omitempty"`
}

// User builds the Ready user object for the bot.
func (b *Bot) User() protocol.BotUser {
	return protocol.BotUser{
		ID:            b.UserID,
		Username:      b.Name,
		Discriminator: b.Discriminator,
		Avatar:        b.Avatar,
		Bot:           true,
		MFAEnabled:    true,
		Verified:      true,
		Flags:         b.UserFlags,
		PublicFlags:   b.PublicFlags,
	}
}

// Application builds the Ready application fragment for the bot.
func (b *Bot) Application() protocol.PartialApplication {
	return protocol.PartialApplication{ID: b.ApplicationID, Flags: b.ApplicationFlags}
}

// MockData sets how many of each entity the generator fabricates.
type MockData struct {
	Guilds      int `json:"guilds" yaml:"guilds"`
	Users       int `json:"users" yaml:"users"`
	Channels    int `json:"channels" yaml:"channels"`
	VoiceStates int `json:"voiceStates" yaml:"voiceStates"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = Duration(DefaultHeartbeatInterval)
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = Duration(DefaultHandshakeTimeout)
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = Duration(DefaultSessionTTL)
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingToken
	}
	if c.Bot.ApplicationID == "" || c.Bot.UserID == "" {
		return ErrMissingBotIDs
	}
	if c.HeartbeatInterval <= 0 {
		return ErrInvalidInterval
	}
	if c.HandshakeTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SessionTTL <= 0 {
		return ErrInvalidSessionTTL
	}
	return nil
}

// Duration is a time.Duration that marshals as a string ("41.25s") in both
// JSON and YAML, and also accepts plain integers as milliseconds.
type Duration time.Duration

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON marshals the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON unmarshals a duration string, or an integer in milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("invalid duration: %s", data)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	return d.parse(s)
}

// MarshalYAML marshals the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML unmarshals a duration string, or an integer in milliseconds.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		var ms int64
		if err := unmarshal(&ms); err != nil {
			return errors.New("invalid duration")
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}
