package marginsdk

import (
	"fmt"
	"os"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Settings is the YAML-backed configuration of a trading session.
type Settings struct {
	Pair         string            `yaml:"pair"`
	StateDir     string            `yaml:"state_dir"`
	CallTimeout  string            `yaml:"call_timeout"`
	SaveInterval string            `yaml:"save_interval"`
	Timeframe    string            `yaml:"timeframe"`
	Rules        PairRuleSettings  `yaml:"rules"`
	Paper        PaperSettings     `yaml:"paper"`
	Replay       ReplaySettings    `yaml:"replay"`
	Funds        map[string]float64 `yaml:"funds,flow"`
}

// PairRuleSettings overrides the simulated trading rules of the pair. Zero
// values fall back to defaults suited to the paper exchange.
type PairRuleSettings struct {
	AmountStep float64 `yaml:"amount_step"`
	PriceStep  float64 `yaml:"price_step"`
	MinAmount  float64 `yaml:"min_amount"`
	MaxAmount  float64 `yaml:"max_amount"`
	MinTotal   float64 `yaml:"min_total"`
}

// PaperSettings configures the simulated exchange.
type PaperSettings struct {
	StartPrice float64 `yaml:"start_price"`
	Seed       int64   `yaml:"seed"`
}

// ReplaySettings configures the CSV replay feed.
type ReplaySettings struct {
	File string `yaml:"file"`
}

// ReadSettings loads session settings from a YAML file.
func ReadSettings(path string) (*Settings, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}

	if settings.Pair == "" {
		return nil, fmt.Errorf("settings file %s does not define a pair", path)
	}

	return settings, nil
}

// PairInfo assembles the trading rules of the configured pair. The base and
// quote currencies are split out of the pair name.
func (s *Settings) PairInfo() (PairInfo, error) {

	parts := strings.Split(s.Pair, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PairInfo{}, fmt.Errorf("pair %q is not in BASE/QUOTE form", s.Pair)
	}

	info := PairInfo{
		Pair:          s.Pair,
		BaseCurrency:  parts[0],
		QuoteCurrency: parts[1],
		AmountStep:    s.Rules.AmountStep,
		PriceStep:     s.Rules.PriceStep,
		MinAmount:     s.Rules.MinAmount,
		MaxAmount:     s.Rules.MaxAmount,
		MinTotal:      s.Rules.MinTotal,
	}

	if info.AmountStep <= 0 {
		info.AmountStep = 0.00001
	}
	if info.PriceStep <= 0 {
		info.PriceStep = 0.00001
	}
	if info.MinAmount <= 0 {
		info.MinAmount = info.AmountStep
	}
	if info.MaxAmount <= 0 {
		info.MaxAmount = 1000000
	}

	return info, nil
}

// CallTimeoutDuration returns the configured call budget, or the engine
// default when unset. Accepts extended duration strings such as "2s" or "1m30s".
func (s *Settings) CallTimeoutDuration() (time.Duration, error) {
	return durationOrDefault(s.CallTimeout, defaultCallTimeout)
}

// SaveIntervalDuration returns the configured state save interval, or the
// engine default when unset.
func (s *Settings) SaveIntervalDuration() (time.Duration, error) {
	return durationOrDefault(s.SaveInterval, defaultSaveInterval)
}

// TimeframeDuration returns the candle timeframe used for warmup data.
func (s *Settings) TimeframeDuration() (time.Duration, error) {
	return durationOrDefault(s.Timeframe, time.Minute)
}

func durationOrDefault(value string, fallback time.Duration) (time.Duration, error) {

	if value == "" {
		return fallback, nil
	}

	d, err := str2duration.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}

	return d, nil
}
