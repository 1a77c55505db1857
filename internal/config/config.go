package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"credit2cash/internal/usecase"
)

// Store backends accepted by C2C_STORE.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config is the process configuration read from the environment.
type Config struct {
	DBPath    string          `env:"C2C_DB_PATH" envDefault:"credit2cash.db"`
	Store     string          `env:"C2C_STORE" envDefault:"sqlite"`
	Seed      uint64          `env:"C2C_SEED"` // 0 draws a fresh seed
	Verbose   bool            `env:"C2C_VERBOSE"`
	CardLimit decimal.Decimal `env:"C2C_CARD_LIMIT" envDefault:"100000"`

	OTPSendDelay        time.Duration `env:"C2C_OTP_SEND_DELAY" envDefault:"500ms"`
	OTPVerifyDelay      time.Duration `env:"C2C_OTP_VERIFY_DELAY" envDefault:"600ms"`
	IdentityVerifyDelay time.Duration `env:"C2C_IDENTITY_VERIFY_DELAY" envDefault:"1s"`
	AadhaarSendDelay    time.Duration `env:"C2C_AADHAAR_SEND_DELAY" envDefault:"800ms"`
	AadhaarVerifyDelay  time.Duration `env:"C2C_AADHAAR_VERIFY_DELAY" envDefault:"1s"`
	ResendCooldown      time.Duration `env:"C2C_RESEND_COOLDOWN" envDefault:"30s"`
}

// Load reads the given dotenv files, skipping missing ones, then parses the
// environment. Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Store != StoreSQLite && cfg.Store != StoreMemory {
		return Config{}, fmt.Errorf("parse env: C2C_STORE must be %q or %q, got %q", StoreSQLite, StoreMemory, cfg.Store)
	}
	if !cfg.CardLimit.IsPositive() {
		return Config{}, fmt.Errorf("parse env: C2C_CARD_LIMIT must be positive, got %s", cfg.CardLimit)
	}
	return cfg, nil
}

// Onboarding returns the simulated latencies and cooldown for the onboarding flow.
func (c Config) Onboarding() usecase.OnboardingConfig {
	oc := usecase.DefaultOnboardingConfig()
	oc.OTPSendDelay = c.OTPSendDelay
	oc.OTPVerifyDelay = c.OTPVerifyDelay
	oc.IdentityVerifyDelay = c.IdentityVerifyDelay
	oc.AadhaarSendDelay = c.AadhaarSendDelay
	oc.AadhaarVerifyDelay = c.AadhaarVerifyDelay
	oc.ResendCooldown = c.ResendCooldown
	return oc
}
