package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the agent
type Config struct {
	// Telegram
	BotToken       string
	AllowedChatIDs []int64

	// Language model endpoint
	LLMBaseURL      string
	LLMAPIKey       string
	LLMModel        string
	LLMSystemPrompt string
	LLMMaxTokens    int
	LLMTimeout      time.Duration

	// Command execution
	WorkingDir     string
	CommandTimeout time.Duration
	EchoResult     bool

	// Status API (disabled when StatusAPIKey is empty)
	StatusAPIKey   string
	StatusHost     string
	StatusPort     int
	RateLimitRPS   int
	AllowedOrigins []string
	DockerEnabled  bool

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables, consulting a .env
// file first if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load(getEnvFile())

	cfg := &Config{
		BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		AllowedChatIDs:  getEnvInt64Slice("ALLOWED_CHAT_IDS"),
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMSystemPrompt: getEnv("LLM_SYSTEM_PROMPT", ""),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 300)) * time.Second,
		WorkingDir:      getEnv("EXECUTOR_WORKING_DIR", "."),
		CommandTimeout:  time.Duration(getEnvInt("EXECUTOR_TIMEOUT_SECONDS", 120)) * time.Second,
		EchoResult:      getEnvBool("EXECUTOR_ECHO_RESULT", true),
		StatusAPIKey:    getEnv("STATUS_API_KEY", ""),
		StatusHost:      getEnv("STATUS_HOST", "0.0.0.0"),
		StatusPort:      getEnvInt("STATUS_PORT", 8092),
		RateLimitRPS:    getEnvInt("STATUS_RATE_LIMIT_RPS", 100),
		AllowedOrigins:  getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		DockerEnabled:   getEnvBool("DOCKER_ENABLED", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.LLMBaseURL == "" {
		return nil, fmt.Errorf("LLM_BASE_URL is required")
	}
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	if cfg.LLMModel == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}

	return cfg, nil
}

// getEnvFile returns the path to the .env file
func getEnvFile() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}

	// Fall back to a .env next to the executable
	exe, err := os.Executable()
	if err == nil {
		dir := strings.TrimSuffix(exe, "/shellbot-agent")
		envPath := dir + "/.env"
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	return ".env"
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		BotToken:       "test-bot-token",
		AllowedChatIDs: nil,
		LLMBaseURL:     "http://localhost:1234/v1",
		LLMAPIKey:      "test-llm-key",
		LLMModel:       "test-model",
		LLMMaxTokens:   2048,
		LLMTimeout:     300 * time.Second,
		WorkingDir:     ".",
		CommandTimeout: 120 * time.Second,
		EchoResult:     true,
		StatusAPIKey:   "test-api-key",
		StatusHost:     "0.0.0.0",
		StatusPort:     8092,
		RateLimitRPS:   100,
		AllowedOrigins: []string{"*"},
		DockerEnabled:  false,
		LogLevel:       "info",
	}
}

// StatusAddr returns the status server address string
func (c *Config) StatusAddr() string {
	return fmt.Sprintf("%s:%d", c.StatusHost, c.StatusPort)
}

// StatusEnabled reports whether the status API should be started
func (c *Config) StatusEnabled() bool {
	return c.StatusAPIKey != ""
}

// IsChatAllowed checks whether a chat may trigger command execution.
// An empty allow-list permits every chat.
func (c *Config) IsChatAllowed(chatID int64) bool {
	if len(c.AllowedChatIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvInt64Slice(key string) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			// Skipped rather than failing startup, but loudly: a typo'd
			// allow-list would otherwise degrade toward allow-all
			log.Printf("Warning: ignoring malformed chat id %q in %s", part, key)
			continue
		}
		out = append(out, id)
	}
	return out
}
