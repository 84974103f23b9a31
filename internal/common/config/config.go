package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	CMS      CMSConfig      `mapstructure:"cms"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
	Brand    BrandConfig    `mapstructure:"brand"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the inbound HTTP API settings.
type ServerConfig struct {
	ListenAddress   string   `mapstructure:"listen_address"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
}

// CMSConfig holds the external content backend (Strapi) settings.
type CMSConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIToken string `mapstructure:"api_token"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// LeadsEndpoint returns the lead collection URL on the CMS backend.
func (c CMSConfig) LeadsEndpoint() string {
	return fmt.Sprintf("%s/api/leads", c.BaseURL)
}

// GlobalEndpoint returns the global site configuration URL, populated deep
// so asset references come back inline.
func (c CMSConfig) GlobalEndpoint() string {
	return fmt.Sprintf("%s/api/global?populate=deep", c.BaseURL)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionsConfig holds per-session state machine settings.
type SessionsConfig struct {
	TTL                 int     `mapstructure:"ttl"`                   // milliseconds
	SuccessDismissDelay int     `mapstructure:"success_dismiss_delay"` // milliseconds
	DraftTTL            int     `mapstructure:"draft_ttl"`             // milliseconds
	VisibilityThreshold float64 `mapstructure:"visibility_threshold"`
	RootMargin          string  `mapstructure:"root_margin"`
}

// WhatsAppConfig holds the outbound chat deep-link settings.
type WhatsAppConfig struct {
	PhoneNumber     string `mapstructure:"phone_number"`
	MessageTemplate string `mapstructure:"message_template"`
}

// BrandConfig holds the hardcoded fallbacks used when the CMS global
// configuration cannot be fetched.
type BrandConfig struct {
	Name   string `mapstructure:"name"`
	Slogan string `mapstructure:"slogan"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
