// Copyright 2024 StreamR Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of the StreamR service.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
}

// DataConfig locates the two backing tables of the catalog.
type DataConfig struct {
	MoviesPath  string `mapstructure:"movies_path"`
	RatingsPath string `mapstructure:"ratings_path"`
}

// DatabaseConfig locates the application store (accounts, watchlists,
// recommendation history).
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ServerConfig configures the REST API.
type ServerConfig struct {
	HttpHost string `mapstructure:"http_host"`
	HttpPort int    `mapstructure:"http_port"`
	APIKey   string `mapstructure:"api_key"`
	// number of recommendations returned when the caller does not pass n
	DefaultN int `mapstructure:"default_n"`
	// upper bound a caller may request through n
	MaxReturn int `mapstructure:"max_return"`
}

func setDefault() {
	// [data]
	viper.SetDefault("data.movies_path", "data/movies.csv")
	viper.SetDefault("data.ratings_path", "data/ratings.csv")
	// [database]
	viper.SetDefault("database.dsn", "streamr.db")
	// [server]
	viper.SetDefault("server.http_host", "127.0.0.1")
	viper.SetDefault("server.http_port", 8087)
	viper.SetDefault("server.api_key", "")
	viper.SetDefault("server.default_n", 10)
	viper.SetDefault("server.max_return", 100)
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			MoviesPath:  "data/movies.csv",
			RatingsPath: "data/ratings.csv",
		},
		Database: DatabaseConfig{
			DSN: "streamr.db",
		},
		Server: ServerConfig{
			HttpHost:  "127.0.0.1",
			HttpPort:  8087,
			DefaultN:  10,
			MaxReturn: 100,
		},
	}
}

// LoadConfig loads the configuration from a TOML file. Values may be
// overridden through STREAMR_* environment variables.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("streamr")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate rejects configurations the service cannot run with.
func (config *Config) Validate() error {
	if config.Data.MoviesPath == "" {
		return errors.NotValidf("empty data.movies_path")
	}
	if config.Data.RatingsPath == "" {
		return errors.NotValidf("empty data.ratings_path")
	}
	if config.Server.HttpPort <= 0 || config.Server.HttpPort > 65535 {
		return errors.NotValidf("server.http_port %d", config.Server.HttpPort)
	}
	if config.Server.DefaultN <= 0 {
		return errors.NotValidf("server.default_n %d", config.Server.DefaultN)
	}
	if config.Server.MaxReturn < config.Server.DefaultN {
		return errors.NotValidf("server.max_return %d below server.default_n", config.Server.MaxReturn)
	}
	return nil
}
