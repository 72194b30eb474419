package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"market-card/internal/domain"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port             int
	BaseURL          string
	TelegramBotToken string
	RedisURL         string
	BotCooldownSecs  int
	APIKey           string

	CMCAPIKey            string
	CMCBaseURL           string
	CMCDataAPIURL        string
	FearGreedFallbackURL string
	MarketSymbols        []string

	AnalysisURL         string
	AnalysisTimeoutSecs int
	OpenAIAPIKey        string
	OpenAIModel         string

	CardScale int
	AssetsDir string
	LogFile   string

	SSHPort           int
	SSHHostKeyPath    string
	SSHAuthorizedKeys string

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
}

// source resolves a key from the environment first, then the optional
// CONFIG_FILE overlay.
type source struct {
	file map[string]string
}

func (s source) get(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(s.file[key])
}

func (s source) positiveInt(key string, def int) int {
	if v := s.get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func Load() *Config {
	src := source{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		values, err := readFile(path)
		if err != nil {
			log.Printf("Warning: ignoring CONFIG_FILE: %v", err)
		}
		src.file = values
	}

	cfg := &Config{
		TelegramBotToken:     src.get("TELEGRAM_BOT_TOKEN"),
		RedisURL:             src.get("REDIS_URL"),
		APIKey:               src.get("API_KEY"),
		CMCAPIKey:            src.get("CMC_API_KEY"),
		CMCBaseURL:           src.get("CMC_BASE_URL"),
		CMCDataAPIURL:        src.get("CMC_DATA_API_URL"),
		FearGreedFallbackURL: src.get("FEAR_GREED_FALLBACK_URL"),
		AnalysisURL:          src.get("ANALYSIS_URL"),
		OpenAIAPIKey:         src.get("OPENAI_API_KEY"),
		LogFile:              src.get("LOG_FILE"),
		SSHHostKeyPath:       src.get("SSH_HOST_KEY_PATH"),
		SSHAuthorizedKeys:    src.get("SSH_AUTHORIZED_KEYS"),
		MCPAuthToken:         src.get("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot will be disabled")
	}
	if cfg.CMCAPIKey == "" {
		log.Println("Warning: CMC_API_KEY not set, market data requests will be rejected")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, bot cooldown disabled")
	}
	if cfg.AnalysisURL == "" && cfg.OpenAIAPIKey == "" {
		log.Println("Warning: neither ANALYSIS_URL nor OPENAI_API_KEY set, cards will have no analysis")
	}

	cfg.Port = src.positiveInt("PORT", 3000)
	cfg.BaseURL = strings.TrimRight(src.get("BASE_URL"), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	cfg.BotCooldownSecs = src.positiveInt("BOT_COOLDOWN_SECS", 30)
	cfg.AnalysisTimeoutSecs = src.positiveInt("ANALYSIS_TIMEOUT_SECS", 12)
	cfg.CardScale = src.positiveInt("CARD_SCALE", 2)
	cfg.SSHPort = src.positiveInt("SSH_PORT", 2222)

	cfg.OpenAIModel = src.get("OPENAI_MODEL")
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.AssetsDir = src.get("ASSETS_DIR")
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "public/assets"
	}

	cfg.MarketSymbols = parseSymbols(src.get("MARKET_SYMBOLS"))

	cfg.MCPTransport = strings.ToLower(src.get("MCP_TRANSPORT"))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(src.get("MCP_HTTP_ENABLED"), "true")

	cfg.MCPHTTPBind = src.get("MCP_HTTP_BIND")
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = src.positiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRequestTimeoutSecs = src.positiveInt("MCP_REQUEST_TIMEOUT_SECS", 30)

	return cfg
}

// parseSymbols splits a comma list into upper-case symbols, falling back to
// the default card assets when nothing usable is given.
func parseSymbols(raw string) []string {
	var symbols []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		s := strings.ToUpper(strings.TrimSpace(part))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	if len(symbols) == 0 {
		return append([]string(nil), domain.DefaultSymbols...)
	}
	return symbols
}

// readFile loads a flat YAML mapping keyed by the same names as the
// environment variables.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		if list, ok := v.([]interface{}); ok {
			parts := make([]string, 0, len(list))
			for _, item := range list {
				parts = append(parts, fmt.Sprint(item))
			}
			values[strings.ToUpper(k)] = strings.Join(parts, ",")
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}
