package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/api/blogger/v3"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Topic      Topic      `yaml:"topic"`
	RenderMode string     `yaml:"render_mode"`
	Context    Context    `yaml:"context"`
	Generation Generation `yaml:"generation"`
	Image      Image      `yaml:"image"`
	Delivery   Delivery   `yaml:"delivery"`
	Retry      Retry      `yaml:"retry"`
	Notify     Notify     `yaml:"notify"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type Topic struct {
	Seed    string   `yaml:"seed"`
	Catalog []string `yaml:"catalog"`
}

type Context struct {
	MaxSnippets int     `yaml:"max_snippets"`
	Sources     Sources `yaml:"sources"`
}

type Sources struct {
	Wikipedia Source `yaml:"wikipedia"`
	News      Source `yaml:"news"`
	Arxiv     Source `yaml:"arxiv"`
}

type Source struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`
	MaxItems int    `yaml:"max_items"`
}

type Generation struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	APIKeyEnv    string        `yaml:"api_key_env"`
	MaxNewTokens int           `yaml:"max_new_tokens"`
	MaxChars     int           `yaml:"max_chars"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Image struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type Delivery struct {
	Method  string  `yaml:"method"`
	Email   Email   `yaml:"email"`
	Blogger Blogger `yaml:"blogger"`
}

type Email struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	UserEnv     string `yaml:"user_env"`
	PasswordEnv string `yaml:"password_env"`
	ToEnv       string `yaml:"to_env"`
}

type Blogger struct {
	BlogIDEnv           string   `yaml:"blog_id_env"`
	ClientSecretFileEnv string   `yaml:"client_secret_file_env"`
	TokenFileEnv        string   `yaml:"token_file_env"`
	CallbackAddr        string   `yaml:"callback_addr"`
	Scopes              []string `yaml:"scopes"`
}

type Retry struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

type Notify struct {
	Telegram Telegram `yaml:"telegram"`
}

type Telegram struct {
	Enabled   bool   `yaml:"enabled"`
	TokenEnv  string `yaml:"token_env"`
	ChatIDEnv string `yaml:"chat_id_env"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for aiblogger.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "aiblogger")
}

// DataDir returns the XDG data directory for aiblogger.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "aiblogger")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/aiblogger/config.yaml > ./config.yaml.
// An empty path with a nil error means "use the built-in defaults".
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the
// embedded default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Topic:      Topic{Seed: "AI Evolution"},
		RenderMode: "plain",
		Context: Context{
			MaxSnippets: 6,
			Sources: Sources{
				Wikipedia: Source{Enabled: true, BaseURL: "https://en.wikipedia.org/api/rest_v1"},
				News:      Source{Enabled: true, BaseURL: "https://news.google.com", MaxItems: 3},
				Arxiv:     Source{Enabled: true, BaseURL: "http://export.arxiv.org", MaxItems: 3},
			},
		},
		Generation: Generation{
			Provider:     "huggingface",
			MaxNewTokens: 700,
			MaxChars:     6000,
			Timeout:      120 * time.Second,
		},
		Image: Image{
			Enabled:   true,
			BaseURL:   "https://api.unsplash.com",
			APIKeyEnv: "UNSPLASH_ACCESS_KEY",
		},
		Delivery: Delivery{
			Method: "email",
			Email: Email{
				Host:        "smtp.gmail.com",
				Port:        587,
				UserEnv:     "GMAIL_USER",
				PasswordEnv: "GMAIL_APP_PASSWORD",
				ToEnv:       "BLOGGER_POST_EMAIL",
			},
			Blogger: Blogger{
				BlogIDEnv:           "BLOGGER_BLOG_ID",
				ClientSecretFileEnv: "BLOGGER_CLIENT_SECRET_FILE",
				TokenFileEnv:        "BLOGGER_TOKEN_FILE",
				CallbackAddr:        "127.0.0.1:8765",
				Scopes:              []string{blogger.BloggerScope},
			},
		},
		Retry: Retry{
			MaxAttempts: 5,
			Backoff:     2 * time.Second,
			HTTPTimeout: 15 * time.Second,
		},
		Notify: Notify{
			Telegram: Telegram{
				TokenEnv:  "TELEGRAM_BOT_TOKEN",
				ChatIDEnv: "TELEGRAM_CHAT_ID",
			},
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.RenderMode) {
	case "plain", "markup":
	default:
		return fmt.Errorf("invalid render_mode %q (want plain or markup)", c.RenderMode)
	}

	switch strings.ToLower(c.Generation.Provider) {
	case "huggingface", "openai", "anthropic":
	default:
		return fmt.Errorf("invalid generation.provider %q", c.Generation.Provider)
	}

	switch strings.ToLower(c.Delivery.Method) {
	case "email", "blogger":
	default:
		return fmt.Errorf("invalid delivery.method %q (want email or blogger)", c.Delivery.Method)
	}

	if c.Context.MaxSnippets < 0 {
		return fmt.Errorf("context.max_snippets must not be negative")
	}
	return nil
}

// GenerationKeyEnv returns the variable holding the generation API key,
// defaulting per provider.
func (c *Config) GenerationKeyEnv() string {
	if c.Generation.APIKeyEnv != "" {
		return c.Generation.APIKeyEnv
	}
	switch strings.ToLower(c.Generation.Provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "HF_TOKEN"
	}
}

// DefaultTokenFile is where the OAuth token lives when no path is configured.
func DefaultTokenFile() string {
	return filepath.Join(DataDir(), "blogger_token.json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
