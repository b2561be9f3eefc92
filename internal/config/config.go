package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"codeberg.org/snonux/ordertrans/internal/sheets/google"
	"codeberg.org/snonux/ordertrans/internal/translation"
	"codeberg.org/snonux/ordertrans/internal/usage"
)

// Default worksheet titles of the review spreadsheet.
const (
	DefaultSourceSheet = "支援审核订单详情"
	DefaultTargetSheet = "电核订单英文翻译"
)

// Sheet backends.
const (
	BackendGoogle = "google"
	BackendXLSX   = "xlsx"
)

// Config is the fully resolved configuration of one invocation.
type Config struct {
	OpenAI      OpenAIConfig
	App         AppConfig
	KeyPool     KeyPoolConfig
	Monitoring  MonitoringConfig
	Translation TranslationConfig
	Writer      WriterConfig
	Sheets      SheetsConfig

	// GoogleCredentials is the service account key in JSON form.
	GoogleCredentials []byte
}

type OpenAIConfig struct {
	APIKey string
}

type AppConfig struct {
	SheetURL        string
	SpreadsheetID   string
	SourceSheet     string
	TargetSheet     string
	MonthlyBudget   float64
	MaxDailyOrders  int
	CostPer1KTokens float64
}

type KeyPoolConfig struct {
	Enabled bool
	Keys    []string
}

type MonitoringConfig struct {
	EnableUsageTracking bool
	AlertThreshold      float64
	MaxTokensPerDay     int
	JournalPath         string
}

type TranslationConfig struct {
	Provider         string
	Model            string
	MaxTokens        int
	Temperature      float64
	Retries          int
	Pause            time.Duration
	FallbackProvider string
	GeminiAPIKey     string
	GeminiModel      string
	Cache            bool
}

type WriterConfig struct {
	BatchSize int
	Pause     time.Duration
}

type SheetsConfig struct {
	Backend         string
	XLSXPath        string
	CredentialsFile string
}

// SetDefaults registers defaults and environment aliases on v.
func SetDefaults(v *viper.Viper) {
	limits := usage.DefaultLimits()
	opts := translation.DefaultOptions()

	v.SetDefault("app_settings.source_sheet", DefaultSourceSheet)
	v.SetDefault("app_settings.target_sheet", DefaultTargetSheet)
	v.SetDefault("app_settings.monthly_budget", limits.MonthlyBudget)
	v.SetDefault("app_settings.max_daily_orders", limits.MaxDailyOrders)
	v.SetDefault("app_settings.cost_per_1k_tokens", limits.CostPer1KTokens)

	v.SetDefault("monitoring.enable_usage_tracking", false)
	v.SetDefault("monitoring.alert_threshold", limits.AlertThreshold)
	v.SetDefault("monitoring.max_tokens_per_day", limits.MaxTokensPerDay)
	v.SetDefault("monitoring.journal_path", DefaultJournalPath())

	v.SetDefault("translation.provider", "openai")
	v.SetDefault("translation.model", "gpt-3.5-turbo")
	v.SetDefault("translation.max_tokens", opts.MaxTokens)
	v.SetDefault("translation.temperature", 0.3)
	v.SetDefault("translation.retries", opts.Retries)
	v.SetDefault("translation.pause", opts.Pause)
	v.SetDefault("translation.gemini_model", translation.DefaultGeminiModel)

	v.SetDefault("writer.batch_size", 20)
	v.SetDefault("writer.pause", time.Second)

	v.SetDefault("sheets.backend", BackendGoogle)

	// Errors only occur for an empty key.
	_ = v.BindEnv("openai.api_key", "ORDERTRANS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("translation.gemini_api_key", "ORDERTRANS_TRANSLATION_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("sheets.credentials_file", "ORDERTRANS_SHEETS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")
}

// DefaultJournalPath is the run journal location under the user state dir.
func DefaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "journal.db")
	}
	return filepath.Join(home, ".local", "state", "ordertrans", "journal.db")
}

// Load reads v into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		OpenAI: OpenAIConfig{
			APIKey: strings.TrimSpace(v.GetString("openai.api_key")),
		},
		App: AppConfig{
			SheetURL:        v.GetString("app_settings.sheet_url"),
			SourceSheet:     v.GetString("app_settings.source_sheet"),
			TargetSheet:     v.GetString("app_settings.target_sheet"),
			MonthlyBudget:   v.GetFloat64("app_settings.monthly_budget"),
			MaxDailyOrders:  v.GetInt("app_settings.max_daily_orders"),
			CostPer1KTokens: v.GetFloat64("app_settings.cost_per_1k_tokens"),
		},
		KeyPool: KeyPoolConfig{
			Enabled: v.GetBool("api_key_pool.enabled"),
			Keys:    v.GetStringSlice("api_key_pool.keys"),
		},
		Monitoring: MonitoringConfig{
			EnableUsageTracking: v.GetBool("monitoring.enable_usage_tracking"),
			AlertThreshold:      v.GetFloat64("monitoring.alert_threshold"),
			MaxTokensPerDay:     v.GetInt("monitoring.max_tokens_per_day"),
			JournalPath:         v.GetString("monitoring.journal_path"),
		},
		Translation: TranslationConfig{
			Provider:         strings.ToLower(v.GetString("translation.provider")),
			Model:            v.GetString("translation.model"),
			MaxTokens:        v.GetInt("translation.max_tokens"),
			Temperature:      v.GetFloat64("translation.temperature"),
			Retries:          v.GetInt("translation.retries"),
			Pause:            v.GetDuration("translation.pause"),
			FallbackProvider: strings.ToLower(v.GetString("translation.fallback_provider")),
			GeminiAPIKey:     strings.TrimSpace(v.GetString("translation.gemini_api_key")),
			GeminiModel:      v.GetString("translation.gemini_model"),
			Cache:            v.GetBool("translation.cache"),
		},
		Writer: WriterConfig{
			BatchSize: v.GetInt("writer.batch_size"),
			Pause:     v.GetDuration("writer.pause"),
		},
		Sheets: SheetsConfig{
			Backend:         strings.ToLower(v.GetString("sheets.backend")),
			XLSXPath:        v.GetString("sheets.xlsx_path"),
			CredentialsFile: v.GetString("sheets.credentials_file"),
		},
	}

	if cfg.App.SheetURL != "" {
		id, err := google.SpreadsheetID(cfg.App.SheetURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: app_settings.sheet_url: %v", ErrInvalidConfig, err)
		}
		cfg.App.SpreadsheetID = id
	}

	creds, err := googleCredentials(v, cfg.Sheets.CredentialsFile)
	if err != nil {
		return Config{}, err
	}
	cfg.GoogleCredentials = creds

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// googleCredentials prefers the inline [google_credentials] table over a key file.
func googleCredentials(v *viper.Viper, file string) ([]byte, error) {
	if inline := v.GetStringMap("google_credentials"); len(inline) > 0 {
		data, err := json.Marshal(inline)
		if err != nil {
			return nil, fmt.Errorf("%w: google_credentials: %v", ErrInvalidConfig, err)
		}
		return data, nil
	}
	if file == "" {
		return nil, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: sheets.credentials_file: %v", ErrInvalidConfig, err)
	}
	return data, nil
}

// Validate checks ranges and backend requirements. API keys are checked when
// a backend is built, so listing history works without them.
func (c Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, key, fmt.Sprintf(format, args...))
	}

	switch c.Sheets.Backend {
	case BackendGoogle:
		if c.App.SpreadsheetID == "" {
			return invalid("app_settings.sheet_url", "required for the google backend")
		}
	case BackendXLSX:
		if c.Sheets.XLSXPath == "" {
			return invalid("sheets.xlsx_path", "required for the xlsx backend")
		}
	default:
		return invalid("sheets.backend", "unknown backend %q", c.Sheets.Backend)
	}

	if strings.TrimSpace(c.App.SourceSheet) == "" {
		return invalid("app_settings.source_sheet", "must not be empty")
	}
	if strings.TrimSpace(c.App.TargetSheet) == "" {
		return invalid("app_settings.target_sheet", "must not be empty")
	}
	if c.App.SourceSheet == c.App.TargetSheet {
		return invalid("app_settings.target_sheet", "must differ from source_sheet")
	}
	if c.App.MaxDailyOrders < 0 {
		return invalid("app_settings.max_daily_orders", "must not be negative")
	}
	if c.App.MonthlyBudget < 0 {
		return invalid("app_settings.monthly_budget", "must not be negative")
	}
	if c.App.CostPer1KTokens < 0 {
		return invalid("app_settings.cost_per_1k_tokens", "must not be negative")
	}
	if c.Monitoring.AlertThreshold < 0 || c.Monitoring.AlertThreshold > 1 {
		return invalid("monitoring.alert_threshold", "must be within [0, 1]")
	}
	if c.Translation.MaxTokens <= 0 {
		return invalid("translation.max_tokens", "must be positive")
	}
	if c.Translation.Temperature < 0 || c.Translation.Temperature > 2 {
		return invalid("translation.temperature", "must be within [0, 2]")
	}
	if c.Translation.Retries < 0 {
		return invalid("translation.retries", "must not be negative")
	}
	if c.Translation.Pause < 0 {
		return invalid("translation.pause", "must not be negative")
	}
	for key, provider := range map[string]string{
		"translation.provider":          c.Translation.Provider,
		"translation.fallback_provider": c.Translation.FallbackProvider,
	} {
		switch provider {
		case "openai", "gemini":
		case "":
			if key == "translation.provider" {
				return invalid(key, "must not be empty")
			}
		default:
			return invalid(key, "unknown provider %q", provider)
		}
	}
	if c.Writer.BatchSize <= 0 {
		return invalid("writer.batch_size", "must be positive")
	}
	if c.Writer.Pause < 0 {
		return invalid("writer.pause", "must not be negative")
	}
	return nil
}

// Limits returns the usage ceilings.
func (c Config) Limits() usage.Limits {
	return usage.Limits{
		MonthlyBudget:   c.App.MonthlyBudget,
		MaxDailyOrders:  c.App.MaxDailyOrders,
		CostPer1KTokens: c.App.CostPer1KTokens,
		AlertThreshold:  c.Monitoring.AlertThreshold,
		MaxTokensPerDay: c.Monitoring.MaxTokensPerDay,
	}
}

// OpenAIKeys returns the pool keys when the pool is enabled, else the single key.
func (c Config) OpenAIKeys() []string {
	if c.KeyPool.Enabled {
		var keys []string
		for _, k := range c.KeyPool.Keys {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			return keys
		}
	}
	if c.OpenAI.APIKey == "" {
		return nil
	}
	return []string{c.OpenAI.APIKey}
}

// BackendConfig returns the settings for translation.New.
func (c Config) BackendConfig() translation.BackendConfig {
	return translation.BackendConfig{
		OpenAIKeys:  c.OpenAIKeys(),
		OpenAIModel: c.Translation.Model,
		GeminiKey:   c.Translation.GeminiAPIKey,
		GeminiModel: c.Translation.GeminiModel,
		Temperature: float32(c.Translation.Temperature),
	}
}

// TranslationOptions returns the client options.
func (c Config) TranslationOptions() translation.Options {
	opts := translation.DefaultOptions()
	opts.MaxTokens = c.Translation.MaxTokens
	opts.Retries = c.Translation.Retries
	opts.Pause = c.Translation.Pause
	opts.Cache = c.Translation.Cache
	return opts
}

// Encode writes the effective configuration as TOML with secrets masked.
func (c Config) Encode(w io.Writer) error {
	keys := make([]string, 0, len(c.KeyPool.Keys))
	for _, k := range c.KeyPool.Keys {
		keys = append(keys, mask(k))
	}
	doc := map[string]map[string]any{
		"openai": {
			"api_key": mask(c.OpenAI.APIKey),
		},
		"app_settings": {
			"sheet_url":          c.App.SheetURL,
			"source_sheet":       c.App.SourceSheet,
			"target_sheet":       c.App.TargetSheet,
			"monthly_budget":     c.App.MonthlyBudget,
			"max_daily_orders":   c.App.MaxDailyOrders,
			"cost_per_1k_tokens": c.App.CostPer1KTokens,
		},
		"api_key_pool": {
			"enabled": c.KeyPool.Enabled,
			"keys":    keys,
		},
		"monitoring": {
			"enable_usage_tracking": c.Monitoring.EnableUsageTracking,
			"alert_threshold":       c.Monitoring.AlertThreshold,
			"max_tokens_per_day":    c.Monitoring.MaxTokensPerDay,
			"journal_path":          c.Monitoring.JournalPath,
		},
		"translation": {
			"provider":          c.Translation.Provider,
			"model":             c.Translation.Model,
			"max_tokens":        c.Translation.MaxTokens,
			"temperature":       c.Translation.Temperature,
			"retries":           c.Translation.Retries,
			"pause":             c.Translation.Pause.String(),
			"fallback_provider": c.Translation.FallbackProvider,
			"gemini_api_key":    mask(c.Translation.GeminiAPIKey),
			"gemini_model":      c.Translation.GeminiModel,
			"cache":             c.Translation.Cache,
		},
		"writer": {
			"batch_size": c.Writer.BatchSize,
			"pause":      c.Writer.Pause.String(),
		},
		"sheets": {
			"backend":          c.Sheets.Backend,
			"xlsx_path":        c.Sheets.XLSXPath,
			"credentials_file": c.Sheets.CredentialsFile,
		},
	}
	return toml.NewEncoder(w).Encode(doc)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:3] + "..." + secret[len(secret)-4:]
}
