package config

import (
	"strings"

	"github.com/spf13/viper"
)

type GeneratorConfig struct {
	LogLevel string      `mapstructure:"log_level"`
	Host     HostConfig  `mapstructure:"host"`
	Guest    GuestConfig `mapstructure:"guest"`
	ABI      ABIConfig   `mapstructure:"abi"`
}

// HostConfig holds settings for the generated Go host bindings.
type HostConfig struct {
	// Go package of the generated file. Empty derives it from the output
	// directory name.
	Package string `mapstructure:"package"`
}

// GuestConfig holds settings for the generated C guest stubs.
type GuestConfig struct {
	// Wasm import module the hidden imports belong to.
	ImportModule string `mapstructure:"import_module"`
	// Macro wrapping hidden import names, e.g. ORCA_IMPORT.
	ImportMacro string `mapstructure:"import_macro"`
}

// ABIConfig holds registration conventions.
type ABIConfig struct {
	// Pad empty parameter lists with a dummy i32 and supply a return
	// placeholder.
	PadEmptySignatures bool `mapstructure:"pad_empty_signatures"`
}

func LoadGeneratorConfig(configPath string) (*GeneratorConfig, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("host.package", "")
	v.SetDefault("guest.import_module", "env")
	v.SetDefault("guest.import_macro", "")
	v.SetDefault("abi.pad_empty_signatures", true)

	// ABIGEN_GUEST_IMPORT_MODULE overrides guest.import_module.
	v.SetEnvPrefix("abigen")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg GeneratorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
