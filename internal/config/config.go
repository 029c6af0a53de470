// Package config resolves run configuration from viper (flags, environment,
// config file) into an explicit structure handed to each pipeline stage.
// Nothing reads viper after startup; stages only see this struct.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
)

// Config carries everything a pipeline run needs.
type Config struct {
	CatalogFile     string
	BillingFile     string
	OutputFile      string
	IntermediateDir string
	HistoryDBPath   string
	HistoryDisabled bool
	PriorYear       string
	CurrentYear     string
	Tolerance       float64
	MinCatalogRows  int
}

// SetDefaults registers the default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("years.prior", "2025")
	v.SetDefault("years.current", "2026")
	v.SetDefault("audit.tolerance", 0.01)
	v.SetDefault("catalog.min_expected_rows", 1000)
	v.SetDefault("output.file", "billing_audit.xlsx")
	v.SetDefault("history.db_path", defaultHistoryPath())
}

// Load materializes the configuration from viper.
func Load(v *viper.Viper) Config {
	return Config{
		CatalogFile:     v.GetString("catalog.file"),
		BillingFile:     v.GetString("billing.file"),
		OutputFile:      v.GetString("output.file"),
		IntermediateDir: v.GetString("output.intermediate_dir"),
		HistoryDBPath:   v.GetString("history.db_path"),
		HistoryDisabled: v.GetBool("history.disabled"),
		PriorYear:       v.GetString("years.prior"),
		CurrentYear:     v.GetString("years.current"),
		Tolerance:       v.GetFloat64("audit.tolerance"),
		MinCatalogRows:  v.GetInt("catalog.min_expected_rows"),
	}
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Validate checks the stage-independent settings.
func (c Config) Validate() error {
	if !yearPattern.MatchString(c.PriorYear) || !yearPattern.MatchString(c.CurrentYear) {
		return fmt.Errorf("%w: price years must be 4-digit years, got %q and %q",
			common.ErrInvalidConfig, c.PriorYear, c.CurrentYear)
	}
	if c.PriorYear == c.CurrentYear {
		return fmt.Errorf("%w: prior and current price years must differ", common.ErrInvalidConfig)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %v",
			common.ErrInvalidConfig, c.Tolerance)
	}
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "billaudit_history.db"
	}
	return filepath.Join(home, ".local", "share", "billaudit", "history.db")
}
