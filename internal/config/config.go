package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobscout/internal/logging"
)

// Config represents the application configuration
type Config struct {
	Bot struct {
		ID  string `yaml:"id" validate:"required"`
		Tag string `yaml:"tag"`
	} `yaml:"bot"`

	Collector struct {
		BaseURL string        `yaml:"base_url" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"collector"`

	Target struct {
		BaseURL     string `yaml:"base_url" default:"https://www.upwork.com"`
		SearchQuery string `yaml:"search_query"` // local fallback when settings carry none
	} `yaml:"target"`

	Scraper struct {
		UserAgent         string        `yaml:"user_agent"`
		HeadlessMode      bool          `yaml:"headless_mode" default:"false"`
		StealthMode       bool          `yaml:"stealth_mode" default:"true"`
		NavigationTimeout time.Duration `yaml:"navigation_timeout" default:"60s"`
		DumpDir           string        `yaml:"dump_dir" default:"html-dumps"`
	} `yaml:"scraper"`

	Challenge struct {
		MaxAttempts  int    `yaml:"max_attempts" default:"5"`
		Solver       string `yaml:"solver" default:"command" validate:"oneof=command 2captcha"`
		ClickCommand string `yaml:"click_command"`
		Captcha      struct {
			APIKey  string        `yaml:"api_key"`
			Timeout time.Duration `yaml:"timeout" default:"120s"`
		} `yaml:"captcha"`
	} `yaml:"challenge"`

	Server struct {
		Host string `yaml:"host" default:"127.0.0.1"`
		Port int    `yaml:"port" default:"4600"`
	} `yaml:"server"`

	Redis struct {
		URL     string        `yaml:"url"` // empty disables the local seen-cache
		SeenTTL time.Duration `yaml:"seen_ttl" default:"24h"`
	} `yaml:"redis"`

	Logging logging.Options `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Collector.Timeout = 10 * time.Second
	config.Target.BaseURL = "https://www.upwork.com"
	config.Scraper.StealthMode = true
	config.Scraper.NavigationTimeout = 60 * time.Second
	config.Scraper.DumpDir = "html-dumps"
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Challenge.MaxAttempts = 5
	config.Challenge.Solver = "command"
	config.Challenge.Captcha.Timeout = 120 * time.Second
	config.Server.Host = "127.0.0.1"
	config.Server.Port = 4600
	config.Redis.SeenTTL = 24 * time.Hour
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if botID := os.Getenv("BOT_ID"); botID != "" {
		c.Bot.ID = botID
	}

	if botTag := os.Getenv("BOT_TAG"); botTag != "" {
		c.Bot.Tag = botTag
	}

	if baseURL := os.Getenv("COLLECTOR_BASE_URL"); baseURL != "" {
		c.Collector.BaseURL = baseURL
	}

	// Legacy name kept so existing deployments don't need new env files
	if serverURL := os.Getenv("SERVER_URL"); serverURL != "" && c.Collector.BaseURL == "" {
		c.Collector.BaseURL = "http://" + serverURL
	}

	if targetURL := os.Getenv("TARGET_BASE_URL"); targetURL != "" {
		c.Target.BaseURL = targetURL
	}

	if query := os.Getenv("SEARCH_QUERY"); query != "" {
		c.Target.SearchQuery = query
	}

	if headless := os.Getenv("HEADLESS"); headless != "" {
		c.Scraper.HeadlessMode = headless == "true" || headless == "1"
	}

	if dumpDir := os.Getenv("DUMP_DIR"); dumpDir != "" {
		c.Scraper.DumpDir = dumpDir
	}

	if solver := os.Getenv("CHALLENGE_SOLVER"); solver != "" {
		c.Challenge.Solver = solver
	}

	if clickCommand := os.Getenv("CLICK_COMMAND"); clickCommand != "" {
		c.Challenge.ClickCommand = clickCommand
	}

	if maxAttempts := os.Getenv("CHALLENGE_MAX_ATTEMPTS"); maxAttempts != "" {
		if n, err := strconv.Atoi(maxAttempts); err == nil && n > 0 {
			c.Challenge.MaxAttempts = n
		}
	}

	if captchaAPIKey := os.Getenv("CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Challenge.Captcha.APIKey = captchaAPIKey
	}

	// Also support 2CAPTCHA_API_KEY for compatibility
	if captchaAPIKey := os.Getenv("2CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Challenge.Captcha.APIKey = captchaAPIKey
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		c.Logging.FilePath = logFile
	}
}

// Validate checks that required fields are present and well-formed
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
