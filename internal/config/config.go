package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ArxivDigest/internal/domain"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "ARXIV_DIGEST_CONFIG"
	outputFolderEnv    = "ARXIV_DIGEST_FOLDER"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	anthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
	googleAPIKeyEnv    = "GOOGLE_API_KEY"
	zoteroAPIKeyEnv    = "ZOTERO_API_KEY"
	zoteroUserIDEnv    = "ZOTERO_USER_ID"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// ErrUnsupportedCategory is returned for categories missing from the catalog.
var ErrUnsupportedCategory = errors.New("category not supported")

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Output        OutputConfig       `yaml:"output"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Categories    []CategoryConfig   `yaml:"categories"`
	Library       LibraryConfig      `yaml:"library"`
	Summary       SummaryConfig      `yaml:"summary"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	// Workers bounds how many days of a sweep run at once.
	Workers int `yaml:"workers"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig points at the folder reports are written under.
type OutputConfig struct {
	Folder string `yaml:"folder"`
}

// FetchConfig tunes the listing fetch strategies.
type FetchConfig struct {
	Strategy        string        `yaml:"strategy"`
	Timeout         time.Duration `yaml:"timeout"`
	RequestInterval time.Duration `yaml:"requestInterval"`
	PageSize        int           `yaml:"pageSize"`
	UserAgent       string        `yaml:"userAgent"`
	// BaseURL points the strategy at a mirror instead of arxiv.org.
	BaseURL string `yaml:"baseURL"`
}

// CategoryConfig declares a supported arXiv category.
type CategoryConfig struct {
	Name          string `yaml:"name"`
	Archive       string `yaml:"archive"`
	Group         string `yaml:"group"`
	SearchArchive string `yaml:"searchArchive"`
}

// LibraryConfig selects the reference-library backend.
type LibraryConfig struct {
	Backend string          `yaml:"backend"`
	SQLite  ZoteroSQLite    `yaml:"sqlite"`
	Web     ZoteroWebConfig `yaml:"web"`
	Timeout time.Duration   `yaml:"timeout"`
}

// ZoteroSQLite locates the Zotero desktop database.
type ZoteroSQLite struct {
	Path string `yaml:"path"`
}

// ZoteroWebConfig describes a Zotero Web API (or local API) library.
type ZoteroWebConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	LibraryType string  `yaml:"libraryType"`
	LibraryID   string  `yaml:"libraryId"`
	APIKey      string  `yaml:"apiKey"`
	RateLimit   float64 `yaml:"rateLimit"`
}

// SummaryConfig controls AI enrichment of rendered records.
type SummaryConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Provider  string          `yaml:"provider"`
	Language  string          `yaml:"language"`
	Focus     string          `yaml:"focus"`
	Timeout   time.Duration   `yaml:"timeout"`
	OpenAI    ProviderConfig  `yaml:"openai"`
	Anthropic ProviderConfig  `yaml:"anthropic"`
	Gemini    ProviderConfig  `yaml:"gemini"`
	Inference InferenceConfig `yaml:"inference"`
}

// ProviderConfig defines how to contact a hosted LLM API.
type ProviderConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"apiKey"`
	MaxTokens int    `yaml:"maxTokens"`
}

// InferenceConfig describes a self-hosted summarization service.
type InferenceConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SchedulerConfig defines when the daily job should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Category resolves a catalog entry by name.
func (c Config) Category(name string) (domain.Category, error) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			archive := cat.Archive
			if archive == "" {
				archive = cat.Name
			}
			search := cat.SearchArchive
			if search == "" {
				search = archive
			}
			return domain.Category{Name: cat.Name, Archive: archive, Group: cat.Group, SearchArchive: search}, nil
		}
	}
	return domain.Category{}, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedCategory, name, strings.Join(c.CategoryNames(), ", "))
}

// CategoryNames lists the catalog in alphabetical order.
func (c Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	sort.Strings(names)
	return names
}

// Load reads YAML configuration from path (or the env-provided path) over the defaults
// and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(outputFolderEnv); v != "" {
		c.Output.Folder = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Summary.OpenAI.APIKey = v
	}
	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Summary.Anthropic.APIKey = v
	}
	if v := os.Getenv(googleAPIKeyEnv); v != "" {
		c.Summary.Gemini.APIKey = v
	}
	if v := os.Getenv(zoteroAPIKeyEnv); v != "" {
		c.Library.Web.APIKey = v
	}
	if v := os.Getenv(zoteroUserIDEnv); v != "" {
		c.Library.Web.LibraryID = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("scheduler timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Output.Folder != "" {
		base.Output.Folder = override.Output.Folder
	}

	if override.Fetch.Strategy != "" {
		base.Fetch.Strategy = override.Fetch.Strategy
	}
	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.RequestInterval > 0 {
		base.Fetch.RequestInterval = override.Fetch.RequestInterval
	}
	if override.Fetch.PageSize > 0 {
		base.Fetch.PageSize = override.Fetch.PageSize
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.BaseURL != "" {
		base.Fetch.BaseURL = override.Fetch.BaseURL
	}

	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}

	if override.Library.Backend != "" {
		base.Library.Backend = override.Library.Backend
	}
	if override.Library.SQLite.Path != "" {
		base.Library.SQLite.Path = override.Library.SQLite.Path
	}
	if override.Library.Web.Endpoint != "" {
		base.Library.Web.Endpoint = override.Library.Web.Endpoint
	}
	if override.Library.Web.LibraryType != "" {
		base.Library.Web.LibraryType = override.Library.Web.LibraryType
	}
	if override.Library.Web.LibraryID != "" {
		base.Library.Web.LibraryID = override.Library.Web.LibraryID
	}
	if override.Library.Web.APIKey != "" {
		base.Library.Web.APIKey = override.Library.Web.APIKey
	}
	if override.Library.Web.RateLimit > 0 {
		base.Library.Web.RateLimit = override.Library.Web.RateLimit
	}
	if override.Library.Timeout > 0 {
		base.Library.Timeout = override.Library.Timeout
	}

	if override.Summary.Enabled {
		base.Summary.Enabled = true
	}
	if override.Summary.Provider != "" {
		base.Summary.Provider = override.Summary.Provider
	}
	if override.Summary.Language != "" {
		base.Summary.Language = override.Summary.Language
	}
	if override.Summary.Focus != "" {
		base.Summary.Focus = override.Summary.Focus
	}
	if override.Summary.Timeout > 0 {
		base.Summary.Timeout = override.Summary.Timeout
	}
	base.Summary.OpenAI = mergeProvider(base.Summary.OpenAI, override.Summary.OpenAI)
	base.Summary.Anthropic = mergeProvider(base.Summary.Anthropic, override.Summary.Anthropic)
	base.Summary.Gemini = mergeProvider(base.Summary.Gemini, override.Summary.Gemini)
	if override.Summary.Inference.Endpoint != "" {
		base.Summary.Inference.Endpoint = override.Summary.Inference.Endpoint
	}
	if override.Summary.Inference.APIKey != "" {
		base.Summary.Inference.APIKey = override.Summary.Inference.APIKey
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Workers > 0 {
		base.Workers = override.Workers
	}

	return base
}

func mergeProvider(base, override ProviderConfig) ProviderConfig {
	if override.Endpoint != "" {
		base.Endpoint = override.Endpoint
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	return base
}

// Default returns the built-in configuration.
func Default() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Output:  OutputConfig{Folder: "arxiv"},
		Fetch: FetchConfig{
			Strategy:        "catchup",
			Timeout:         30 * time.Second,
			RequestInterval: 3 * time.Second,
			PageSize:        200,
			UserAgent:       "ArxivDigest/1.0",
		},
		Categories: []CategoryConfig{
			{Name: "quant-ph", Archive: "quant-ph", Group: "physics", SearchArchive: "quant-ph"},
			{Name: "chem-ph", Archive: "physics.chem-ph", Group: "physics", SearchArchive: "physics"},
		},
		Library: LibraryConfig{
			Backend: "zotero-web",
			Web: ZoteroWebConfig{
				Endpoint:    "http://localhost:23119/api",
				LibraryType: "users",
				LibraryID:   "0",
				RateLimit:   5,
			},
			Timeout: 30 * time.Second,
		},
		Summary: SummaryConfig{
			Provider: "gemini",
			Language: "Chinese",
			Focus:    "electronic structure theory, quantum chemistry, condensed matter physics, or quantum information",
			Timeout:  2 * time.Minute,
			OpenAI: ProviderConfig{
				Endpoint:  "https://api.openai.com/v1/chat/completions",
				Model:     "gpt-4o",
				MaxTokens: 600,
			},
			Anthropic: ProviderConfig{
				Endpoint:  "https://api.anthropic.com/v1/messages",
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 600,
			},
			Gemini: ProviderConfig{
				Model: "gemini-2.5-flash",
			},
		},
		Scheduler: SchedulerConfig{CronExpression: "0 10 * * *", Timezone: defaultTimezone, location: tz},
		Workers:   1,
	}
}
