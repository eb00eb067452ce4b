package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// AdminEmails is the out-of-band trust list: identities resolving to one
	// of these e-mails are promoted to admin at login time.
	AdminEmails map[string]struct{}

	Payment  PaymentConfig
	Telegram TelegramConfig
}

// PaymentConfig drives the gateway adapter. The shop prices in MDL; the
// gateway settles in Currency, so totals are converted with the fixed
// MDLPerUnit rate and then raised to MinCharge if the conversion lands below
// the gateway's smallest chargeable amount.
type PaymentConfig struct {
	APIBase     string
	ClientID    string
	Secret      string
	Currency    string
	MDLPerUnit  decimal.Decimal
	MinCharge   decimal.Decimal
	MinOrderMDL decimal.Decimal
	ReturnURL   string
	CancelURL   string
}

// Configured reports whether gateway credentials are present. Missing
// credentials are fatal for payment endpoints, not for the rest of the API.
func (p PaymentConfig) Configured() bool {
	return p.APIBase != "" && p.ClientID != "" && p.Secret != ""
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

func (t TelegramConfig) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads configuration from the environment. godotenv is loaded by main
// before this runs.
func Load() Config {
	cfg := Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminEmails: map[string]struct{}{},
		Payment: PaymentConfig{
			APIBase:     os.Getenv("PAYMENT_API_BASE"),
			ClientID:    os.Getenv("PAYMENT_CLIENT_ID"),
			Secret:      os.Getenv("PAYMENT_SECRET"),
			Currency:    getenv("PAYMENT_CURRENCY", "EUR"),
			MDLPerUnit:  decimalEnv("PAYMENT_MDL_RATE", "19.60"),
			MinCharge:   decimalEnv("PAYMENT_MIN_CHARGE", "1.00"),
			MinOrderMDL: decimalEnv("PAYMENT_MIN_ORDER_MDL", "1"),
			ReturnURL:   os.Getenv("PAYMENT_RETURN_URL"),
			CancelURL:   os.Getenv("PAYMENT_CANCEL_URL"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		},
	}

	for _, email := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			cfg.AdminEmails[email] = struct{}{}
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func decimalEnv(key, fallback string) decimal.Decimal {
	raw := getenv(key, fallback)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}
