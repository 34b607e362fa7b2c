package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// LoadPreset читает профиль стратегии из configs/presets.yaml.
// Профили — заготовки под разные режимы (default/aggressive/conservative),
// значения из values-файла и env всё равно перекрывают их.
func LoadPreset(name string) (Strategy, error) {
	v := viper.New()
	v.SetConfigName("presets")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	if err := v.ReadInConfig(); err != nil {
		return Strategy{}, errors.Wrap(err, "read presets")
	}

	sub := v.Sub("presets." + name)
	if sub == nil {
		return Strategy{}, errors.Errorf("preset %q not found", name)
	}

	s := defaultStrategy()
	if sub.IsSet("threshold") {
		s.Threshold = sub.GetFloat64("threshold")
	}
	if sub.IsSet("swap_portion") {
		s.SwapPortion = sub.GetFloat64("swap_portion")
	}
	if sub.IsSet("min_swap_usd") {
		s.MinSwapUSD = sub.GetFloat64("min_swap_usd")
	}
	if sub.IsSet("max_swap_usd") {
		s.MaxSwapUSD = sub.GetFloat64("max_swap_usd")
	}
	if sub.IsSet("drawdown_limit") {
		s.DrawdownLimit = sub.GetFloat64("drawdown_limit")
	}
	if sub.IsSet("check_interval") {
		if d, err := time.ParseDuration(sub.GetString("check_interval")); err == nil {
			s.CheckInterval = d
		}
	}
	if sub.IsSet("price_window") {
		s.PriceWindow = sub.GetInt("price_window")
	}
	return s, nil
}
