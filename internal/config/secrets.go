package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Secrets holds the credentials a run needs, resolved from the environment.
type Secrets struct {
	GenerationAPIKey string
	ImageAPIKey      string

	EmailUser     string
	EmailPassword string
	EmailTo       string

	BlogID           string
	ClientSecretFile string
	TokenFile        string

	TelegramToken  string
	TelegramChatID int64
}

// MissingError reports required environment variables that are unset.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}

// ResolveSecrets reads every secret the configured providers need through
// getenv and reports all missing ones at once. It performs no network I/O.
func (c *Config) ResolveSecrets(getenv func(string) string) (*Secrets, error) {
	s := &Secrets{}
	var missing []string

	require := func(name string) string {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			missing = append(missing, name)
		}
		return v
	}

	s.GenerationAPIKey = require(c.GenerationKeyEnv())

	if c.Image.Enabled {
		s.ImageAPIKey = require(c.Image.APIKeyEnv)
	}

	switch strings.ToLower(c.Delivery.Method) {
	case "email":
		e := c.Delivery.Email
		s.EmailUser = require(e.UserEnv)
		s.EmailPassword = require(e.PasswordEnv)
		s.EmailTo = require(e.ToEnv)
	case "blogger":
		b := c.Delivery.Blogger
		s.BlogID = require(b.BlogIDEnv)
		s.ClientSecretFile = require(b.ClientSecretFileEnv)
		s.TokenFile = strings.TrimSpace(getenv(b.TokenFileEnv))
		if s.TokenFile == "" {
			s.TokenFile = DefaultTokenFile()
		}
	}

	var chatID string
	if t := c.Notify.Telegram; t.Enabled {
		s.TelegramToken = require(t.TokenEnv)
		chatID = require(t.ChatIDEnv)
	}

	if len(missing) > 0 {
		return nil, &MissingError{Names: missing}
	}

	if chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a numeric chat id: %w", c.Notify.Telegram.ChatIDEnv, err)
		}
		s.TelegramChatID = id
	}

	return s, nil
}
