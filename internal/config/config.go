package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
		// PublicBaseURL is the externally reachable base used to build
		// payment links, e.g. "https://pay.example.com".
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Verifier struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		// VerifyTimeout bounds a single verify/settle round trip, seconds.
		VerifyTimeout int `yaml:"verify_timeout"`
		// OptimisticTimeoutAccept: when a proof is present and the verifier
		// does not answer within VerifyTimeout, settle anyway and let
		// reconciliation correct a false positive later.
		OptimisticTimeoutAccept bool `yaml:"optimistic_timeout_accept"`
	} `yaml:"verifier"`

	Workspace struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"workspace"`

	Scheduler struct {
		ActivationInterval int `yaml:"activation_interval"` // seconds
		OutgoingInterval   int `yaml:"outgoing_interval"`   // seconds
		RefundInterval     int `yaml:"refund_interval"`     // seconds
	} `yaml:"scheduler"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	// Test mode: configuration from environment variables only.
	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.Server.PublicBaseURL = "http://localhost:4000"
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@paylink.local"
	cfg.Email.FromName = "PayLink"

	cfg.Verifier.BaseURL = "http://localhost:8402"
	cfg.Verifier.OptimisticTimeoutAccept = true

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Verifier.VerifyTimeout == 0 {
		cfg.Verifier.VerifyTimeout = 5
	}
	if cfg.Scheduler.ActivationInterval == 0 {
		cfg.Scheduler.ActivationInterval = 120
	}
	if cfg.Scheduler.OutgoingInterval == 0 {
		cfg.Scheduler.OutgoingInterval = 60
	}
	if cfg.Scheduler.RefundInterval == 0 {
		cfg.Scheduler.RefundInterval = 3600
	}
}
