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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

const configTOML = `
[data]
movies_path = "testdata/movies.csv"
ratings_path = "testdata/ratings.csv"

[database]
dsn = "test.db"

[server]
http_host = "0.0.0.0"
http_port = 8088
api_key = "19260817"
default_n = 20
max_return = 201
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte(configTOML), 0644))
	config, err := LoadConfig(path)
	assert.NoError(t, err)
	// [data]
	assert.Equal(t, "testdata/movies.csv", config.Data.MoviesPath)
	assert.Equal(t, "testdata/ratings.csv", config.Data.RatingsPath)
	// [database]
	assert.Equal(t, "test.db", config.Database.DSN)
	// [server]
	assert.Equal(t, "0.0.0.0", config.Server.HttpHost)
	assert.Equal(t, 8088, config.Server.HttpPort)
	assert.Equal(t, "19260817", config.Server.APIKey)
	assert.Equal(t, 20, config.Server.DefaultN)
	assert.Equal(t, 201, config.Server.MaxReturn)
}

func TestSetDefault(t *testing.T) {
	setDefault()
	viper.SetConfigType("toml")
	err := viper.ReadConfig(strings.NewReader(""))
	assert.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), &config)
}

func TestValidate(t *testing.T) {
	config := GetDefaultConfig()
	assert.NoError(t, config.Validate())

	config = GetDefaultConfig()
	config.Data.MoviesPath = ""
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Server.HttpPort = -1
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Server.DefaultN = 0
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Server.MaxReturn = 1
	assert.Error(t, config.Validate())
}
