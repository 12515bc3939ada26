package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// OverpaymentPolicy selects what happens to a loan repayment that exceeds
// the outstanding balance.
type OverpaymentPolicy string

const (
	// OverpaymentCarryForward credits the excess to the member's savings
	// account.
	OverpaymentCarryForward OverpaymentPolicy = "carry_forward"
	// OverpaymentRefund records the excess and immediately pays it back
	// out, leaving an auditable in/out pair on the savings ledger.
	OverpaymentRefund OverpaymentPolicy = "refund"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Policy knobs surfaced as configuration, not hidden defaults.
	WithdrawalApprovalThreshold decimal.Decimal
	Overpayment                 OverpaymentPolicy
	DefaultGraceDays            int

	// Accrual scan scheduling.
	AccrualScanInterval time.Duration
	AccrualBatchSize    int

	// Notification dispatch (optional; empty disables publishing).
	RedisAddr string

	RateLimitSpec string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("WITHDRAWAL_APPROVAL_THRESHOLD", "1000")
	viper.SetDefault("OVERPAYMENT_POLICY", string(OverpaymentCarryForward))
	viper.SetDefault("DEFAULT_GRACE_DAYS", 90)
	viper.SetDefault("ACCRUAL_SCAN_INTERVAL", "24h")
	viper.SetDefault("ACCRUAL_BATCH_SIZE", 200)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	threshold, err := decimal.NewFromString(viper.GetString("WITHDRAWAL_APPROVAL_THRESHOLD"))
	if err != nil {
		threshold = decimal.NewFromInt(1000)
		log.Printf("Warning: Invalid WITHDRAWAL_APPROVAL_THRESHOLD. Defaulting to %s.\n", threshold.String())
	}
	cfg.WithdrawalApprovalThreshold = threshold

	policy := OverpaymentPolicy(viper.GetString("OVERPAYMENT_POLICY"))
	if policy != OverpaymentCarryForward && policy != OverpaymentRefund {
		log.Printf("Warning: Invalid OVERPAYMENT_POLICY (%q). Defaulting to %s.\n", policy, OverpaymentCarryForward)
		policy = OverpaymentCarryForward
	}
	cfg.Overpayment = policy

	cfg.DefaultGraceDays = viper.GetInt("DEFAULT_GRACE_DAYS")
	if cfg.DefaultGraceDays <= 0 {
		cfg.DefaultGraceDays = 90
	}

	scanInterval, err := time.ParseDuration(viper.GetString("ACCRUAL_SCAN_INTERVAL"))
	if err != nil {
		scanInterval = 24 * time.Hour
		log.Printf("Warning: Invalid ACCRUAL_SCAN_INTERVAL. Defaulting to %s.\n", scanInterval)
	}
	cfg.AccrualScanInterval = scanInterval

	cfg.AccrualBatchSize = viper.GetInt("ACCRUAL_BATCH_SIZE")
	if cfg.AccrualBatchSize <= 0 {
		cfg.AccrualBatchSize = 200
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RateLimitSpec = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
