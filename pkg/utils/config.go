package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the rsbeams tool configuration
type Config struct {
	Insert InsertConfig `yaml:"insert" mapstructure:"insert"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// InsertConfig contains default nonlinear-insert parameters
type InsertConfig struct {
	Length    float64 `yaml:"length" mapstructure:"length"`
	Phase     float64 `yaml:"phase" mapstructure:"phase"`
	Strength  float64 `yaml:"strength" mapstructure:"strength"`
	Aperture  float64 `yaml:"aperture" mapstructure:"aperture"`
	NumSlices int     `yaml:"num_slices" mapstructure:"num_slices"`
}

// OutputConfig contains output-specific configuration
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	rsbeamsDir := filepath.Join(homeDir, ".rsbeams")

	return &Config{
		Insert: InsertConfig{
			Length:    1.8,
			Phase:     0.3,
			Strength:  0.1,
			Aperture:  0.01,
			NumSlices: 20,
		},
		Output: OutputConfig{
			Format: "elements",
			Dir:    filepath.Join(rsbeamsDir, "output"),
		},
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	homeDir, _ := os.UserHomeDir()
	viper.AddConfigPath(filepath.Join(homeDir, ".rsbeams"))
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("RSBEAMS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if config.Output.Dir != "" {
		if err := os.MkdirAll(config.Output.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Insert.Length <= 0 {
		return fmt.Errorf("insert length must be positive")
	}

	if config.Insert.Aperture <= 0 {
		return fmt.Errorf("insert aperture must be positive")
	}

	if config.Insert.NumSlices <= 0 {
		return fmt.Errorf("insert slice count must be positive")
	}

	validFormats := map[string]bool{
		"elements": true,
		"lattice":  true,
		"json":     true,
	}
	if !validFormats[config.Output.Format] {
		return fmt.Errorf("invalid output format: %s", config.Output.Format)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".rsbeams", "config.yaml"), nil
}
