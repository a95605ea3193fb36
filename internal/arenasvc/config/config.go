package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mekdi/faction-services/internal/arenasvc/engine"
	"github.com/mekdi/faction-services/internal/arenasvc/models"
	"github.com/mekdi/faction-services/internal/fpmath"
)

type Config struct {
	AdminAddress string
	VaultURL     string
	RouterURL    string
	AuditTTL     time.Duration
	Engine       engine.Config
}

func Load() Config {
	return Config{
		AdminAddress: os.Getenv("ADMIN_ADDRESS"),
		VaultURL:     os.Getenv("VAULT_URL"),
		RouterURL:    os.Getenv("ROUTER_URL"),
		AuditTTL:     time.Duration(envInt("AUDIT_TTL_DAYS", 30)) * 24 * time.Hour,
		Engine:       loadEngine(),
	}
}

// loadEngine builds the accounting configuration from env, falling back to
// the production defaults: 100 FP per USD, 6x peak at $1k held 35 days,
// multiplier gone at $100k or 350 days, weekly epochs, three factions.
func loadEngine() engine.Config {
	const day = int64(86400)
	return engine.Config{
		FPPerUSD:          envFixed("FP_PER_USD", 100*fpmath.One),
		PeakMultiplier:    envFixed("PEAK_MULTIPLIER", 6*fpmath.One),
		TargetAmount:      envFixed("TARGET_AMOUNT_USD", 1000*fpmath.One),
		MaxAmount:         envFixed("MAX_AMOUNT_USD", 100000*fpmath.One),
		TargetHoldSecs:    envInt("TARGET_HOLD_SECS", 35*day),
		MaxHoldSecs:       envInt("MAX_HOLD_SECS", 350*day),
		EpochDurationSecs: envInt("EPOCH_DURATION_SECS", 7*day),
		NumFactions:       uint32(envInt("NUM_FACTIONS", 3)),
		YieldToken:        envOr("YIELD_TOKEN", "YLD"),
		RewardToken:       envOr("REWARD_TOKEN", "RWD"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// envFixed reads a decimal env value ("1000", "6.5") into fixed-point.
func envFixed(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fallback
	}
	return models.FixedFromDecimal(d)
}
