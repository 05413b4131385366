// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file and environment variables, providing a unified configuration system.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/earthsurvivors/earthsurvivors/internal/config"
)

// InitConfig initializes the global Viper instance. It registers defaults,
// defines the configuration search paths, and enables environment variable
// overrides with the SURVIVORS prefix (e.g. SURVIVORS_SERVER_PORT=8080).
//
// When cfgFile is non-empty that exact file is used and a read failure is an
// error. Otherwise Viper searches the usual locations for a config file and
// a missing file is fine: defaults plus environment variables apply.
func InitConfig(cfgFile string) error {
	v := viper.GetViper()

	config.SetDefaults(v)

	v.SetEnvPrefix("SURVIVORS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")                     // Current working directory
	v.AddConfigPath("/etc/earthsurvivors/")  // System-wide configuration
	v.AddConfigPath("$HOME/.earthsurvivors") // User-specific configuration

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
