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
package main

import (
	"fmt"
	_ "net/http/pprof"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streamr-io/streamr/base/log"
	"github.com/streamr-io/streamr/cmd/version"
	"github.com/streamr-io/streamr/config"
	"github.com/streamr-io/streamr/dataset"
	"github.com/streamr-io/streamr/server"
	"github.com/streamr-io/streamr/storage/data"
)

var streamrCommand = &cobra.Command{
	Use:   "streamr",
	Short: "The StreamR movie recommender service.",
	Run: func(cmd *cobra.Command, args []string) {
		// show version
		showVersion, _ := cmd.PersistentFlags().GetBool("version")
		if showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)
		// load config
		configPath, _ := cmd.PersistentFlags().GetString("config")
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.String("config", configPath), zap.Error(err))
		}
		// load catalog snapshot
		catalog, err := dataset.LoadCatalog(conf.Data.MoviesPath, conf.Data.RatingsPath)
		if err != nil {
			log.Logger().Fatal("failed to load catalog", zap.Error(err))
		}
		// open application store
		client, err := data.Open(conf.Database.DSN)
		if err != nil {
			log.Logger().Fatal("failed to open database", zap.String("dsn", conf.Database.DSN), zap.Error(err))
		}
		if err = client.Init(); err != nil {
			log.Logger().Fatal("failed to init database", zap.Error(err))
		}
		// start server
		s := server.NewRestServer(conf, catalog, client)
		s.StartHttpServer()
	},
}

func init() {
	streamrCommand.PersistentFlags().BoolP("version", "v", false, "streamr version")
	streamrCommand.PersistentFlags().StringP("config", "c", "config.toml", "configuration file path")
	streamrCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	log.AddFlags(streamrCommand.PersistentFlags())
}

func main() {
	if err := streamrCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
