package classify

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings contains configurable thresholds for zombie classification.
// Overrides may change the magnitude of a threshold but never the direction
// of its comparison.
type Settings struct {
	// CPUZombiePercent is the average CPU below which a compute instance is
	// considered a zombie (default: 10).
	CPUZombiePercent float64 `mapstructure:"cpu_zombie_percent"`
	// NetworkZombieBps is the average network-in below which a compute
	// instance is considered a zombie (default: 1024 bytes/s).
	NetworkZombieBps float64 `mapstructure:"network_zombie_bps"`
	// CPUResizePercent is the average CPU below which an instance is flagged
	// as oversized (default: 30).
	CPUResizePercent float64 `mapstructure:"cpu_resize_percent"`
	// MinSafeAgeDays is the minimum instance age before Terminate is
	// recommended instead of Stop (default: 30).
	MinSafeAgeDays float64 `mapstructure:"min_safe_age_days"`
	// UnattachedDays is the grace period before an unattached volume is
	// flagged for deletion (default: 7).
	UnattachedDays float64 `mapstructure:"unattached_days"`
	// IOPSUtilization is the provisioned-IOPS utilization below which a
	// volume is flagged for an IOPS reduction (default: 0.20).
	IOPSUtilization float64 `mapstructure:"iops_utilization"`
	// IdleHoursPer30Days is the active-hours threshold per 30-day period
	// below which a warehouse is considered idle (default: 10).
	IdleHoursPer30Days float64 `mapstructure:"idle_hours_per_30_days"`
	// CreditUtilization is the size-implied capacity utilization below which
	// a warehouse is flagged as oversized (default: 0.30).
	CreditUtilization float64 `mapstructure:"credit_utilization"`
	// ColdAccessDays is the no-access period after which object storage is
	// flagged for archival (default: 90).
	ColdAccessDays float64 `mapstructure:"cold_access_days"`
	// IncompleteUploadsMinGB is the minimum wasted size before incomplete
	// multipart uploads are flagged (default: 10).
	IncompleteUploadsMinGB float64 `mapstructure:"incomplete_uploads_min_gb"`
	// CreditPriceUSD is the assumed price of one warehouse credit
	// (default: 2.0).
	CreditPriceUSD float64 `mapstructure:"credit_price_usd"`
	// Concurrency bounds the classification worker pool (default: 8).
	Concurrency int `mapstructure:"concurrency"`
}

// DefaultSettings returns the fixed default thresholds.
func DefaultSettings() Settings {
	return Settings{
		CPUZombiePercent:       10,
		NetworkZombieBps:       1024,
		CPUResizePercent:       30,
		MinSafeAgeDays:         30,
		UnattachedDays:         7,
		IOPSUtilization:        0.20,
		IdleHoursPer30Days:     10,
		CreditUtilization:      0.30,
		ColdAccessDays:         90,
		IncompleteUploadsMinGB: 10,
		CreditPriceUSD:         2.0,
		Concurrency:            8,
	}
}

// LoadSettings reads threshold overrides from the given file, applied on top
// of the defaults. Non-positive overrides are rejected so a bad value cannot
// flip the direction of a comparison.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s Settings) Validate() error {
	checks := map[string]float64{
		"cpu_zombie_percent":        s.CPUZombiePercent,
		"network_zombie_bps":        s.NetworkZombieBps,
		"cpu_resize_percent":        s.CPUResizePercent,
		"min_safe_age_days":         s.MinSafeAgeDays,
		"unattached_days":           s.UnattachedDays,
		"iops_utilization":          s.IOPSUtilization,
		"idle_hours_per_30_days":    s.IdleHoursPer30Days,
		"credit_utilization":        s.CreditUtilization,
		"cold_access_days":          s.ColdAccessDays,
		"incomplete_uploads_min_gb": s.IncompleteUploadsMinGB,
		"credit_price_usd":          s.CreditPriceUSD,
	}
	for name, value := range checks {
		if value <= 0 {
			return fmt.Errorf("threshold %s must be positive, got %v", name, value)
		}
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	return nil
}
