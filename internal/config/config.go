package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SnapshotConfig holds configuration for capturing a pool snapshot.
type SnapshotConfig struct {
	RPCURL       string
	Pool         string
	Block        uint64
	WordRadius   int
	Out          string
	PgDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// QuoteConfig holds configuration for quoting a swap. The pool state comes
// from a snapshot file, or is captured live when an RPC URL and pool address
// are given instead.
type QuoteConfig struct {
	SnapshotPath string
	RPCURL       string
	Pool         string
	Block        uint64
	WordRadius   int
	MaxRetries   int
	RetryBackoff time.Duration
	Amount       string
	ExactOut     bool
	ZeroForOne   bool
	PriceLimit   string
	Trace        bool
	Out          string
	PgDSN        string
	LogLevel     string
}

// StepConfig holds configuration for evaluating a single swap step.
type StepConfig struct {
	SqrtPrice string
	Target    string
	Liquidity string
	Amount    string
	ExactOut  bool
	FeePips   uint32
	LogLevel  string
}

// LoadSnapshot merges config file, environment variables, and flags.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"word-radius":   2,
		"out":           "./data/snapshot.jsonl",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		RPCURL:       v.GetString("rpc"),
		Pool:         v.GetString("pool"),
		Block:        v.GetUint64("block"),
		WordRadius:   v.GetInt("word-radius"),
		Out:          v.GetString("out"),
		PgDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadQuote merges config file, environment variables, and flags.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"word-radius":   2,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"out":           "./data/quotes.jsonl",
		"log-level":     "info",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		SnapshotPath: v.GetString("snapshot"),
		RPCURL:       v.GetString("rpc"),
		Pool:         v.GetString("pool"),
		Block:        v.GetUint64("block"),
		WordRadius:   v.GetInt("word-radius"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		Amount:       v.GetString("amount"),
		ExactOut:     v.GetBool("exact-out"),
		ZeroForOne:   v.GetBool("zero-for-one"),
		PriceLimit:   v.GetString("price-limit"),
		Trace:        v.GetBool("trace"),
		Out:          v.GetString("out"),
		PgDSN:        v.GetString("pg-dsn"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadStep merges config file, environment variables, and flags.
func LoadStep(cfgFile string, flags *pflag.FlagSet) (StepConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"log-level": "info",
	})
	if err != nil {
		return StepConfig{}, err
	}

	cfg := StepConfig{
		SqrtPrice: v.GetString("sqrt-price"),
		Target:    v.GetString("target"),
		Liquidity: v.GetString("liquidity"),
		Amount:    v.GetString("amount"),
		ExactOut:  v.GetBool("exact-out"),
		FeePips:   v.GetUint32("fee"),
		LogLevel:  v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("QUOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
