package config

import (
	"marketstate/core"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file, MARKETSTATE_ prefixed env vars override it
func Load(configFile string, cfg *core.Config) error {
	// on unless the file turns it off
	cfg.Protocol.TrackUSD = true
	cfg.Worker.RefreshSpec = DefaultRefreshSpec

	configUtil.AutomaticLoadEnv("MARKETSTATE")
	if err := configUtil.LoadYaml(configFile, cfg); err != nil {
		return err
	}

	defaults(cfg)
	normalize(cfg)
	return validate(cfg)
}
