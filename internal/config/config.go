package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/imishinist/congstat/internal/extract"
	timeutils "github.com/imishinist/congstat/internal/time"
)

// Databricks domain suffixes for URL detection
var databricksDomains = []string{
	".cloud.databricks.com",
	".azuredatabricks.net",
	".gcp.databricks.com",
}

// Valid configuration values
var (
	validFlavors = map[string]bool{
		"legacy": true, "westwood": true, "westwoodmin": true, "nola": true, "vegas": true,
	}
	validBDPModes = map[string]bool{
		"piecewise": true, "sendme": true, "cwnd": true, "inflight": true,
	}
	validErrorPolicies = map[string]bool{
		"fail": true, "skip": true,
	}
	validLogFormats = map[string]bool{
		"text": true, "json": true,
	}
)

const (
	DefaultInputTemplate       = "tor_simu_{{.SimDuration}}_{{.Flavor}}_{{.BDP}}_rate{{.Rate}}_burst{{.Burst}}_ncirc{{.Circuits}}_oldCong0_run{{.Run}}_rtt{{.RTT}}.txt"
	DefaultLegacyInputTemplate = "tor_simu_{{.SimDuration}}_rate{{.Rate}}_burst{{.Burst}}_ncirc{{.Circuits}}_oldCong1_run{{.Run}}_rtt{{.RTT}}.txt"
	DefaultOutputTemplate      = "tor_simu_{{.Kind}}_BDP{{.BDP}}_nCirc{{.Circuits}}_simt{{.SimDuration}}_rtt{{.RTT}}"
)

type Config struct {
	SimDuration string
	Flavors     []string
	BDP         string
	Rate        int
	Burst       int
	Circuits    int
	Runs        int
	RTT         int

	Relays         []string
	EntityFormat   string
	NumericPattern string

	InputDir            string
	InputTemplate       string
	LegacyInputTemplate string
	OutputDir           string
	OutputTemplate      string

	LayoutsFile   string
	FlavorLayouts map[string]string
	ExtraLayouts  []string

	Bins    int
	Jobs    int
	OnError string

	LogLevel  string
	LogFormat string

	TrackingURI     string
	ExperimentID    string
	DatabricksHost  string
	DatabricksToken string
}

// SetDefaults registers the default of every key on the global viper
// instance.
func SetDefaults() {
	viper.SetDefault("sim_duration", "60s")
	viper.SetDefault("flavors", []string{"vegas"})
	viper.SetDefault("bdp", "piecewise")
	viper.SetDefault("rate", 6)
	viper.SetDefault("burst", 8)
	viper.SetDefault("circuits", 1)
	viper.SetDefault("runs", 10)
	viper.SetDefault("rtt", 100)
	viper.SetDefault("relays", []string{"exit"})
	// the simulator closes the marker with "]", so circuit 1 does not match 10
	viper.SetDefault("entity_format", "Circuit %d]")
	viper.SetDefault("numeric_pattern", extract.NumericPattern)
	viper.SetDefault("input_dir", ".")
	viper.SetDefault("input_template", DefaultInputTemplate)
	viper.SetDefault("legacy_input_template", DefaultLegacyInputTemplate)
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("output_template", DefaultOutputTemplate)
	viper.SetDefault("bins", 100)
	viper.SetDefault("jobs", 1)
	viper.SetDefault("on_error", "fail")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("tracking_uri", "http://localhost:5000")
}

func New() *Config {
	return &Config{
		SimDuration:         viper.GetString("sim_duration"),
		Flavors:             viper.GetStringSlice("flavors"),
		BDP:                 viper.GetString("bdp"),
		Rate:                viper.GetInt("rate"),
		Burst:               viper.GetInt("burst"),
		Circuits:            viper.GetInt("circuits"),
		Runs:                viper.GetInt("runs"),
		RTT:                 viper.GetInt("rtt"),
		Relays:              viper.GetStringSlice("relays"),
		EntityFormat:        viper.GetString("entity_format"),
		NumericPattern:      viper.GetString("numeric_pattern"),
		InputDir:            viper.GetString("input_dir"),
		InputTemplate:       viper.GetString("input_template"),
		LegacyInputTemplate: viper.GetString("legacy_input_template"),
		OutputDir:           viper.GetString("output_dir"),
		OutputTemplate:      viper.GetString("output_template"),
		LayoutsFile:         viper.GetString("layouts_file"),
		FlavorLayouts:       viper.GetStringMapString("flavor_layouts"),
		ExtraLayouts:        viper.GetStringSlice("extra_layouts"),
		Bins:                viper.GetInt("bins"),
		Jobs:                viper.GetInt("jobs"),
		OnError:             viper.GetString("on_error"),
		LogLevel:            viper.GetString("log_level"),
		LogFormat:           viper.GetString("log_format"),
		TrackingURI:         viper.GetString("tracking_uri"),
		ExperimentID:        viper.GetString("experiment_id"),
		DatabricksHost:      viper.GetString("databricks_host"),
		DatabricksToken:     viper.GetString("databricks_token"),
	}
}

// Validate checks the analysis settings.
func (c *Config) Validate() error {
	if _, err := c.Duration(); err != nil {
		return err
	}

	if len(c.Flavors) == 0 {
		return fmt.Errorf("at least one congestion flavor is required")
	}
	seen := make(map[string]bool, len(c.Flavors))
	for _, f := range c.Flavors {
		if !validFlavors[f] {
			return fmt.Errorf("invalid congestion flavor: %s (valid: legacy, westwood, westwoodmin, nola, vegas)", f)
		}
		if seen[f] {
			return fmt.Errorf("duplicate congestion flavor: %s", f)
		}
		seen[f] = true
	}

	if !validBDPModes[c.BDP] {
		return fmt.Errorf("invalid BDP mode: %s (valid: piecewise, sendme, cwnd, inflight)", c.BDP)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"rate", c.Rate},
		{"burst", c.Burst},
		{"circuits", c.Circuits},
		{"runs", c.Runs},
		{"rtt", c.RTT},
		{"bins", c.Bins},
		{"jobs", c.Jobs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}

	if !strings.Contains(c.EntityFormat, "%d") {
		return fmt.Errorf("entity format must contain %%d: %q", c.EntityFormat)
	}

	relays := make(map[string]bool, len(c.Relays))
	for _, r := range c.Relays {
		if r == "" {
			return fmt.Errorf("relay role must not be empty")
		}
		if relays[r] {
			return fmt.Errorf("duplicate relay role: %s", r)
		}
		relays[r] = true
	}

	if _, err := c.Tokenizer(); err != nil {
		return err
	}

	if !validErrorPolicies[c.OnError] {
		return fmt.Errorf("invalid error policy: %s (valid: fail, skip)", c.OnError)
	}

	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.LogFormat)
	}

	if _, err := c.Paths(); err != nil {
		return err
	}

	return nil
}

// RelayRoles returns the relay roles to select. No roles means no relay
// filter, expressed as a single empty role.
func (c *Config) RelayRoles() []string {
	if len(c.Relays) == 0 {
		return []string{""}
	}
	return c.Relays
}

// Tokenizer compiles the numeric literal pattern.
func (c *Config) Tokenizer() (*extract.Tokenizer, error) {
	if c.NumericPattern == "" {
		return extract.NewTokenizer(), nil
	}
	return extract.NewTokenizerPattern(c.NumericPattern)
}

// ValidateTracking checks the settings needed to talk to a tracking server.
func (c *Config) ValidateTracking() error {
	if c.TrackingURI == "" {
		return fmt.Errorf("tracking URI is required")
	}
	return nil
}

// Duration returns the parsed simulation duration.
func (c *Config) Duration() (time.Duration, error) {
	return timeutils.ParseSimDuration(c.SimDuration)
}

// IsDatabricks checks if the tracking URI points to Databricks
func (c *Config) IsDatabricks() bool {
	if c.TrackingURI == "databricks" {
		return true
	}

	if strings.HasPrefix(c.TrackingURI, "databricks://") {
		return true
	}

	if strings.HasPrefix(c.TrackingURI, "https://") {
		host := c.extractHostFromURL(c.TrackingURI)
		return c.isDatabricksHost(host)
	}

	return false
}

func (c *Config) extractHostFromURL(url string) string {
	host := strings.TrimPrefix(url, "https://")
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	return host
}

func (c *Config) isDatabricksHost(host string) bool {
	for _, domain := range databricksDomains {
		if strings.HasSuffix(host, domain) {
			return true
		}
	}
	return false
}

// GetDatabricksProfile extracts the profile name from databricks://{profile} URI
func (c *Config) GetDatabricksProfile() string {
	if !strings.HasPrefix(c.TrackingURI, "databricks://") {
		return ""
	}

	profile := strings.TrimPrefix(c.TrackingURI, "databricks://")
	if idx := strings.Index(profile, "/"); idx != -1 {
		profile = profile[:idx]
	}
	return profile
}
