// Package config loads the client configuration: yaml file, environment
// overrides, and optionally an SSM parameter for fleet-managed devices.
package config

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"gopkg.in/yaml.v3"
)

// DemoCredential is a local sign-in fallback used when the backend is
// unreachable. Demo mode keeps the app partially usable offline.
type DemoCredential struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
}

type SlackConfig struct {
	Token          string `yaml:"token"`
	InfoChannelID  string `yaml:"infoChannel"`
	ErrorChannelID string `yaml:"errorChannel"`
}

type EmailConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type Config struct {
	BackendURL    string           `yaml:"backendUrl"`
	SigningSecret string           `yaml:"signingSecret"` // base64
	CachePath     string           `yaml:"cachePath"`
	GeminiAPIKey  string           `yaml:"geminiApiKey"`
	DemoUsers     []DemoCredential `yaml:"demoUsers"`
	Slack         SlackConfig      `yaml:"slack"`
	Email         EmailConfig      `yaml:"email"`
}

// Load reads a yaml config file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{CachePath: "shiftman.db"}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backendUrl is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHIFTMAN_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("SHIFTMAN_SIGNING_SECRET"); v != "" {
		cfg.SigningSecret = v
	}
	if v := os.Getenv("SHIFTMAN_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		cfg.Slack.Token = v
	}
}

var (
	once    sync.Once
	ssmCfg  *Config
	loadErr error
)

// LoadSSM fetches the yaml config payload from an SSM parameter, decrypted.
// Cached for the process lifetime.
func LoadSSM(ctx context.Context, paramName string) (*Config, error) {
	once.Do(func() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(awsCfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		var parsed Config
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}

		applyEnv(&parsed)
		ssmCfg = &parsed
	})

	return ssmCfg, loadErr
}
