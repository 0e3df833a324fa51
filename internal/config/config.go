package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Addr         string   `yaml:"addr"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"http"`
	Dev struct {
		Mode bool `yaml:"mode"`
	} `yaml:"dev"`
	LLM struct {
		Provider   string `yaml:"provider"`
		Model      string `yaml:"model"`
		APIKey     string `yaml:"api_key"`
		BaseURL    string `yaml:"base_url"`
		OllamaURL  string `yaml:"ollama_url"`
		PromptPath string `yaml:"prompt_path"`
	} `yaml:"llm"`
	Memory struct {
		URL          string `yaml:"url"`
		APIKey       string `yaml:"api_key"`
		ContainerTag string `yaml:"container_tag"`
		SearchLimit  int    `yaml:"search_limit"`
	} `yaml:"memory"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8090"
	cfg.HTTP.AllowOrigins = []string{"*"}
	cfg.Dev.Mode = true
	cfg.LLM.Provider = "noop"
	cfg.LLM.Model = "gemini-1.5-flash-latest"
	cfg.LLM.OllamaURL = "http://localhost:11434"
	cfg.Memory.ContainerTag = "apply-boost"
	cfg.Memory.SearchLimit = 5
	cfg.Log.Level = "info"
	return cfg
}

// Load reads an optional yaml file, then applies .env and AB_* overrides.
// A missing file at the given path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AB_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("AB_ALLOW_ORIGINS"); v != "" {
		cfg.HTTP.AllowOrigins = splitCSV(v)
	}
	if v := os.Getenv("AB_DEV_MODE"); v != "" {
		cfg.Dev.Mode = parseBool(v, cfg.Dev.Mode)
	}
	if v := os.Getenv("AB_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("AB_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("AB_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("AB_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("AB_OLLAMA_URL"); v != "" {
		cfg.LLM.OllamaURL = v
	}
	if v := os.Getenv("AB_PROMPT_PATH"); v != "" {
		cfg.LLM.PromptPath = v
	}
	if v := os.Getenv("AB_MEMORY_URL"); v != "" {
		cfg.Memory.URL = v
	}
	if v := os.Getenv("AB_MEMORY_API_KEY"); v != "" {
		cfg.Memory.APIKey = v
	}
	if v := os.Getenv("AB_MEMORY_CONTAINER_TAG"); v != "" {
		cfg.Memory.ContainerTag = v
	}
	if v := os.Getenv("AB_MEMORY_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Memory.SearchLimit = n
		}
	}
	if v := os.Getenv("AB_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("AB_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func parseBool(input string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func splitCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		val := strings.TrimSpace(part)
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	return out
}
