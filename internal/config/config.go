package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	LLMProvider    string   `json:"llm_provider" validate:"oneof=openai gemini"`
	OpenAIAPIKey   string   `json:"openai_api_key" validate:"required_if=LLMProvider openai"`
	OpenAIBaseURL  string   `json:"openai_base_url" validate:"omitempty,url"`
	GeminiAPIKey   string   `json:"gemini_api_key" validate:"required_if=LLMProvider gemini"`
	TextModel      string   `json:"text_model"`
	ImageModel     string   `json:"image_model"`
	MaxTokens      int      `json:"max_tokens" validate:"gt=0"`
	Temperature    float32  `json:"temperature" validate:"gte=0,lte=2"`
	RecipeLanguage string   `json:"recipe_language" validate:"required"`
	ImageMaxWidth  uint     `json:"image_max_width"`
	Port           string   `json:"port" validate:"required,numeric"`
	CORSOrigins    []string `json:"cors_origins" validate:"min=1"`
	DatabaseURL    string   `json:"DATABASE_URL"`
	LogLevel       string   `json:"log_level" validate:"oneof=debug info warn error"`

	UpstreamTimeout   time.Duration `json:"-" validate:"gte=0"`
	ImageFetchTimeout time.Duration `json:"-" validate:"gt=0"`
	ShutdownTimeout   time.Duration `json:"-" validate:"gt=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		LLMProvider:       "openai",
		MaxTokens:         5000,
		Temperature:       0.8,
		RecipeLanguage:    "Spanish",
		Port:              "5080",
		CORSOrigins:       []string{"*"},
		LogLevel:          "info",
		UpstreamTimeout:   45 * time.Second,
		ImageFetchTimeout: 30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Load builds the configuration from defaults, then the JSON file at path (if
// it exists), then a .env file in the working directory, then the process
// environment. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks cfg against its field constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.LLMProvider, "LLM_PROVIDER")
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.TextModel, "TEXT_MODEL")
	setString(&cfg.ImageModel, "IMAGE_MODEL")
	setString(&cfg.RecipeLanguage, "RECIPE_LANGUAGE")
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if v, ok := lookup("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	cfg.LLMProvider = strings.ToLower(cfg.LLMProvider)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	return errors.Join(
		setInt(&cfg.MaxTokens, "MAX_TOKENS"),
		setFloat(&cfg.Temperature, "TEMPERATURE"),
		setUint(&cfg.ImageMaxWidth, "IMAGE_MAX_WIDTH"),
		setDuration(&cfg.UpstreamTimeout, "UPSTREAM_TIMEOUT"),
		setDuration(&cfg.ImageFetchTimeout, "IMAGE_FETCH_TIMEOUT"),
		setDuration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT"),
	)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setUint(dst *uint, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = uint(n)
	return nil
}

func setFloat(dst *float32, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = float32(f)
	return nil
}

// setDuration accepts Go durations ("45s") or a plain number of seconds.
func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
