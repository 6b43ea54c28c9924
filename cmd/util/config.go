package util

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seedkit/seedkit/config"
)

// flagBindings maps a seedkit subcommand's flag names onto the nested
// viper keys config.Resolve reads, since cobra flags are flat
// (database-url) while the config file and SEEDKIT_ environment variables
// are nested (database.url / SEEDKIT_DATABASE_URL).
var flagBindings = map[string]string{
	"database-url": "database.url",
	"seed":         "generate.seed",
	"rows":         "generate.rows",
	"format":       "generate.format",
	"copy":         "generate.copy",
	"include":      "generate.include",
	"exclude":      "generate.exclude",
	"from-lock":    "generate.from_lock",
	"force":        "generate.force",
	"subset":       "generate.subset",
}

// BindConfig layers CLI flags over environment variables (SEEDKIT_ prefix)
// over an optional --config YAML file over seedkit's built-in defaults, the
// precedence order spec.md §6 requires. It returns the resolved Config
// plus the viper instance, in case a caller needs a raw value BindConfig
// didn't surface.
func BindConfig(cmd *cobra.Command) (*config.Config, *viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SEEDKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, err
		}
	}

	for flagName, key := range flagBindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Resolve(v)
	if err != nil {
		return nil, nil, err
	}

	if cfg.SubsetProfile != "" {
		profile, err := config.LoadProfile(cfg.SubsetProfile)
		if err != nil {
			return nil, nil, err
		}
		cfg.ApplyProfile(profile)
	}

	return cfg, v, nil
}
