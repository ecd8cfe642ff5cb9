package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	PayFast  PayFastConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	Sandbox     bool
	Host        string
	// StrictValidation aborts ITN processing when the server-to-server
	// re-validation with PayFast does not answer VALID. When false the
	// failure is logged and processing continues (sandbox behaviour).
	StrictValidation       bool
	ValidateTimeoutSeconds int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("PAYFAST_SANDBOX", true)
	viper.SetDefault("PAYFAST_HOST", "sandbox.payfast.co.za")
	viper.SetDefault("PAYFAST_STRICT_VALIDATION", false)
	viper.SetDefault("PAYFAST_VALIDATE_TIMEOUT_SECONDS", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		PayFast: PayFastConfig{
			MerchantID:             viper.GetString("PAYFAST_MERCHANT_ID"),
			MerchantKey:            viper.GetString("PAYFAST_MERCHANT_KEY"),
			Passphrase:             viper.GetString("PAYFAST_PASSPHRASE"),
			Sandbox:                viper.GetBool("PAYFAST_SANDBOX"),
			Host:                   viper.GetString("PAYFAST_HOST"),
			StrictValidation:       viper.GetBool("PAYFAST_STRICT_VALIDATION"),
			ValidateTimeoutSeconds: viper.GetInt("PAYFAST_VALIDATE_TIMEOUT_SECONDS"),
		},
	}

	return config, nil
}
