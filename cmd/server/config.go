package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/grailstone/think-web-ui/internal/handlers"
	"github.com/grailstone/think-web-ui/internal/services"
	"gopkg.in/yaml.v3"
)

// Built-in defaults point at a locally hosted OpenAI-compatible server; the app is usable with
// no config file at all.
const (
	defaultPort         = "8080"
	defaultBaseURL      = "http://localhost:11434/v1"
	defaultModel        = "deepseek-r1:8b"
	defaultSystemPrompt = "You are a helpful assistant. You may reason inside <think> tags before answering."
	defaultTitlePrompt  = "Generate a chat title from the given message, at most five words, title only."
)

type llmConfig interface {
	llm(systemPrompt string, logger *slog.Logger) (handlers.LLM, error)
	titleGen(titlePrompt string, logger *slog.Logger) (handlers.TitleGenerator, error)
}

// BaseLLMConfig contains the common fields for all LLM configurations.
type BaseLLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type config struct {
	Port                 string    `yaml:"port"`
	SystemPrompt         string    `yaml:"systemPrompt"`
	TitleGeneratorPrompt string    `yaml:"titleGeneratorPrompt"`
	LLM                  llmConfig `yaml:"llm"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	BaseURL       string `yaml:"baseURL"`
	APIKey        string `yaml:"apiKey"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port                 string         `yaml:"port"`
		SystemPrompt         string         `yaml:"systemPrompt"`
		TitleGeneratorPrompt string         `yaml:"titleGeneratorPrompt"`
		LLM                  map[string]any `yaml:"llm"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	c.Port = rawConfig.Port
	c.SystemPrompt = rawConfig.SystemPrompt
	c.TitleGeneratorPrompt = rawConfig.TitleGeneratorPrompt

	llmProvider, ok := rawConfig.LLM["provider"].(string)
	if !ok {
		return fmt.Errorf("llm provider is required")
	}

	llmRawYAML, err := yaml.Marshal(rawConfig.LLM)
	if err != nil {
		return err
	}

	var llm llmConfig
	switch llmProvider {
	case "openai", "deepseek":
		llm = &openAIConfig{}
	case "ollama":
		llm = &ollamaConfig{}
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}

	if err := yaml.Unmarshal(llmRawYAML, llm); err != nil {
		return err
	}

	c.LLM = llm

	return nil
}

func defaultConfig() config {
	return config{
		Port:                 defaultPort,
		SystemPrompt:         defaultSystemPrompt,
		TitleGeneratorPrompt: defaultTitlePrompt,
		LLM: &openAIConfig{
			BaseLLMConfig: BaseLLMConfig{Provider: "openai", Model: defaultModel},
			BaseURL:       defaultBaseURL,
		},
	}
}

// loadConfig reads config.yaml from the user config directory. A missing file is not an error;
// the built-in local defaults apply.
func loadConfig(logger *slog.Logger) (config, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return config{}, fmt.Errorf("error getting user config dir: %w", err)
	}

	cfgFilePath := filepath.Join(cfgDir, "thinkwebui", "config.yaml")
	cfgFile, err := os.Open(cfgFilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("No config file found, using defaults", slog.String("path", cfgFilePath))
			return defaultConfig(), nil
		}
		return config{}, fmt.Errorf("error opening config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := defaultConfig()
	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil {
		return config{}, fmt.Errorf("error decoding config file: %w", err)
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.TitleGeneratorPrompt == "" {
		cfg.TitleGeneratorPrompt = defaultTitlePrompt
	}

	return cfg, nil
}

func (o openAIConfig) newOpenAI(systemPrompt string, logger *slog.Logger) (services.OpenAI, error) {
	if o.Model == "" {
		return services.OpenAI{}, fmt.Errorf("model is required")
	}

	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiKey := o.APIKey
	if apiKey == "" {
		// Local servers accept any key; go-openai just needs one to form the header.
		apiKey = "unused"
	}
	return services.NewOpenAI(baseURL, apiKey, o.Model, systemPrompt, logger), nil
}

func (o openAIConfig) llm(systemPrompt string, logger *slog.Logger) (handlers.LLM, error) {
	return o.newOpenAI(systemPrompt, logger)
}

func (o openAIConfig) titleGen(titlePrompt string, logger *slog.Logger) (handlers.TitleGenerator, error) {
	return o.newOpenAI(titlePrompt, logger)
}

func (o ollamaConfig) newOllama(systemPrompt string) (services.Ollama, error) {
	if o.Model == "" {
		return services.Ollama{}, fmt.Errorf("model is required")
	}

	host := o.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	return services.NewOllama(host, o.Model, systemPrompt), nil
}

func (o ollamaConfig) llm(systemPrompt string, _ *slog.Logger) (handlers.LLM, error) {
	return o.newOllama(systemPrompt)
}

func (o ollamaConfig) titleGen(titlePrompt string, _ *slog.Logger) (handlers.TitleGenerator, error) {
	return o.newOllama(titlePrompt)
}
