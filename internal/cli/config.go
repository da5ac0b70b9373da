package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Config is the optional TOML file at
// $XDG_CONFIG_HOME/atdock/config.toml. It currently holds one setting.
type Config struct {
	PDS string `toml:"pds"`
}

func configPath() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, "atdock", "config.toml")
}

// loadConfig reads the config file at path. A missing file is not an
// error; a malformed one is.
func loadConfig(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}
