// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional on-disk configuration. Command-line flags
// override it; it overrides the built-in defaults.
type fileConfig struct {
	DBPath         string `toml:"db_path"`
	EmbeddingHost  string `toml:"embedding_host"`
	ChatHost       string `toml:"chat_host"`
	EmbeddingModel string `toml:"embedding_model"`
	ChatModel      string `toml:"chat_model"`
}

// loadFileConfig reads the TOML configuration at path, or the default
// ~/.config/chatvault/config.toml when path is empty. A missing file is
// not an error.
func loadFileConfig(path string) (*fileConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	cfg := &fileConfig{}
	if home != "" {
		cfg.DBPath = filepath.Join(home, ".config", "chatvault", "archive.db")
	}

	explicit := path != ""
	if path == "" {
		if home == "" {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "chatvault", "config.toml")
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)
	return cfg, nil
}

func expandHome(path, home string) string {
	if home != "" && len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
