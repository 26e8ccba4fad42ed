// Copyright (C) 2017. See AUTHORS.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/awssigner/go-openssl/credentials"
)

const defaultConfigFile = "~/.awssign.toml"

// Config is the TOML configuration file. Command line flags override it.
type Config struct {
	Service         string `toml:"service"`
	Region          string `toml:"region"`
	Profile         string `toml:"profile"`
	CredentialsFile string `toml:"credentials_file"`
	LogLevel        string `toml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Service:  "s3",
		Region:   "us-east-1",
		LogLevel: "warn",
	}
}

// loadConfig reads path over the defaults. An explicitly named file must
// exist; the default one is optional.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	name, err := credentials.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(name); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	md, err := toml.DecodeFile(name, &cfg)
	if err != nil {
		return cfg, errors.Wrapf(err, "awssign: loading config %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("awssign: unknown keys in %s: %v", name, undecoded)
	}
	return cfg, nil
}
