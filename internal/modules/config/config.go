package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"safeloop_bot/internal/models"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatTelegramENV   = "TELEGRAM_CHAT_ID"
	databaseDSN       = "DATABASE_DSN"
	rpcURLENV         = "RPC_URL"
	runtimeIDENV      = "RUNTIME_ID"
	presetENV         = "PRESET"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		AdminPort int `yaml:"admin_port"`
	} `yaml:"service"`

	// Идентичность процесса: одна строка sf_system на runtime id.
	RuntimeID string `yaml:"runtime_id"`

	Chain struct {
		RPCURL   string `yaml:"rpc_url"`
		WSURL    string `yaml:"ws_url"`    // опционально: Sync-вотчер пула
		RelayURL string `yaml:"relay_url"` // пусто => paper-исполнитель

		Wallet string `yaml:"wallet"` // адрес кошелька бота
		Pair   string `yaml:"pair"`   // V2-пара BTCB/USDT
		Base   string `yaml:"base"`   // BTCB
		Quote  string `yaml:"quote"`  // USDT
		WBNB   string `yaml:"wbnb"`

		BaseDecimals  int `yaml:"base_decimals"`
		QuoteDecimals int `yaml:"quote_decimals"`

		// Подкачка газа: если BNB < GasMinBNB — просим у релея рефилл.
		GasMinBNB    float64 `yaml:"gas_min_bnb"`
		GasRefillUSD float64 `yaml:"gas_refill_usd"`

		CallTimeout time.Duration `yaml:"call_timeout"`
	} `yaml:"chain"`

	// Стратегия. Профиль подгружается из configs/presets.yaml (PRESET),
	// затем значения из values-файла и env перекрывают его.
	Strategy Strategy `yaml:"strategy"`
}

type Strategy struct {
	Threshold     float64       `yaml:"threshold"`      // базовый τ, напр. 0.01
	SwapPortion   float64       `yaml:"swap_portion"`   // доля портфеля за свап
	MinSwapUSD    float64       `yaml:"min_swap_usd"`
	MaxSwapUSD    float64       `yaml:"max_swap_usd"`
	DrawdownLimit float64       `yaml:"drawdown_limit"`
	CheckInterval time.Duration `yaml:"check_interval"` // период цикла = кулдаун
	PriceWindow   int           `yaml:"price_window"`   // ёмкость окна цен (26..40)
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("%w: open config file: %v", models.ErrConfig, err)
	}
	defer func() {
		_ = file.Close()
	}()

	config := Config{
		RuntimeID: getenvDefault(runtimeIDENV, "main"),
		Strategy:  defaultStrategy(),
	}
	config.Chain.CallTimeout = 15 * time.Second
	config.Chain.GasMinBNB = 0.03
	config.Chain.GasRefillUSD = 2

	if preset, err := LoadPreset(getenvDefault(presetENV, "default")); err == nil {
		config.Strategy = preset
	}

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: decode config file: %v", models.ErrConfig, err)
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if v := os.Getenv(chatTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	if rpc := os.Getenv(rpcURLENV); rpc != "" {
		config.Chain.RPCURL = rpc
	}

	config.Strategy.Threshold = floatFromEnv("THRESHOLD", config.Strategy.Threshold)
	config.Strategy.SwapPortion = floatFromEnv("SWAP_PORTION", config.Strategy.SwapPortion)
	config.Strategy.MinSwapUSD = floatFromEnv("MIN_SWAP_USD", config.Strategy.MinSwapUSD)
	config.Strategy.MaxSwapUSD = floatFromEnv("MAX_SWAP_USD", config.Strategy.MaxSwapUSD)
	config.Strategy.DrawdownLimit = floatFromEnv("DRAWDOWN_LIMIT", config.Strategy.DrawdownLimit)
	config.Strategy.CheckInterval = durationFromEnv("CHECK_INTERVAL", config.Strategy.CheckInterval)
	config.Strategy.PriceWindow = intFromEnv("PRICE_WINDOW", config.Strategy.PriceWindow)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func defaultStrategy() Strategy {
	return Strategy{
		Threshold:     0.01,
		SwapPortion:   0.1,
		MinSwapUSD:    20,
		MaxSwapUSD:    300,
		DrawdownLimit: 0.15,
		CheckInterval: time.Hour,
		PriceWindow:   40,
	}
}

// validate — ConfigurationError фатален: без обязательных полей цикл не стартует.
func (c *Config) validate() error {
	switch {
	case c.DB == "":
		return fmt.Errorf("%w: db_dsn is required", models.ErrConfig)
	case c.Chain.RPCURL == "":
		// цена и балансы ходят через ноду каждый цикл, paper-режим не исключение
		return fmt.Errorf("%w: rpc_url is required", models.ErrConfig)
	case c.Chain.Pair == "" || c.Chain.Base == "" || c.Chain.Quote == "" || c.Chain.Wallet == "":
		return fmt.Errorf("%w: wallet/pair/base/quote addresses are required", models.ErrConfig)
	case c.Strategy.Threshold <= 0:
		return fmt.Errorf("%w: strategy.threshold must be > 0", models.ErrConfig)
	case c.Strategy.SwapPortion <= 0 || c.Strategy.SwapPortion > 1:
		return fmt.Errorf("%w: strategy.swap_portion must be in (0;1]", models.ErrConfig)
	case c.Strategy.MinSwapUSD > c.Strategy.MaxSwapUSD:
		return fmt.Errorf("%w: min_swap_usd > max_swap_usd", models.ErrConfig)
	case c.Strategy.CheckInterval <= 0:
		return fmt.Errorf("%w: strategy.check_interval must be > 0", models.ErrConfig)
	}
	if c.Strategy.PriceWindow < 26 {
		c.Strategy.PriceWindow = 26
	}
	if c.Chain.BaseDecimals == 0 {
		c.Chain.BaseDecimals = 18
	}
	if c.Chain.QuoteDecimals == 0 {
		c.Chain.QuoteDecimals = 18
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
