package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. DTW_WINDOW_LENGTH or DTW_OUTPUT_DIR
const EnvPrefix = "DTW"

// Manager loads an AnalysisConfig from defaults, an optional config file, the environment
// and explicit overrides, in increasing order of precedence.
type Manager struct {
	validator *AnalysisValidator
	envFiles  []string
}

// NewManager creates a configuration manager. envFiles are loaded with godotenv before the
// environment is read; missing files are skipped. With no arguments ".env" is tried.
func NewManager(envFiles ...string) *Manager {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &Manager{
		validator: NewAnalysisValidator(),
		envFiles:  envFiles,
	}
}

// LoadConfig builds and validates the configuration. configFile may be empty. Keys of
// overrides use the config file names ("window_length", "output.dir").
func (m *Manager) LoadConfig(configFile string, overrides map[string]interface{}) (*AnalysisConfig, error) {
	if err := m.loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Exchange keys keep their conventional names
	_ = v.BindEnv("bybit.api_key", "BYBIT_API_KEY", EnvPrefix+"_BYBIT_API_KEY")
	_ = v.BindEnv("bybit.api_secret", "BYBIT_API_SECRET", EnvPrefix+"_BYBIT_API_SECRET")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.WrapError(err, apperrors.ErrorKindConfig, component, "LoadConfig").
				WithContext("file", configFile)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := &AnalysisConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrorKindConfig, component, "LoadConfig")
	}

	if err := m.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig validates a configuration using the validator
func (m *Manager) ValidateConfig(cfg *AnalysisConfig) error {
	return m.validator.Validate(cfg)
}

func (m *Manager) loadEnvFiles() error {
	for _, path := range m.envFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return apperrors.WrapError(err, apperrors.ErrorKindConfig, component, "LoadConfig").
				WithContext("file", path)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultAnalysisConfig()

	v.SetDefault("symbol", d.Symbol)
	v.SetDefault("category", d.Category)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("source", d.Source)
	v.SetDefault("data_file", d.DataFile)
	v.SetDefault("data_root", d.DataRoot)
	v.SetDefault("start_date", d.StartDate)
	v.SetDefault("reference_end_date", d.ReferenceEndDate)
	v.SetDefault("window_length", d.WindowLength)
	v.SetDefault("window_mode", d.WindowMode)
	v.SetDefault("exclusion_factor", d.ExclusionFactor)
	v.SetDefault("method", d.Method)
	v.SetDefault("search_radius", d.SearchRadius)
	v.SetDefault("price_field", d.PriceField)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("top_matches", d.TopMatches)

	v.SetDefault("bybit.api_key", "")
	v.SetDefault("bybit.api_secret", "")
	v.SetDefault("bybit.testnet", false)
	v.SetDefault("bybit.base_url", "")

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.console", d.Output.Console)
	v.SetDefault("output.csv", d.Output.CSV)
	v.SetDefault("output.json", d.Output.JSON)
	v.SetDefault("output.excel", d.Output.Excel)
	v.SetDefault("output.metrics_file", d.Output.MetricsFile)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.quiet", d.Log.Quiet)
}
