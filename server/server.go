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

package server

import (
	"fmt"
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/streamr-io/streamr/base/log"
	"github.com/streamr-io/streamr/config"
	"github.com/streamr-io/streamr/dataset"
	"github.com/streamr-io/streamr/logics"
	"github.com/streamr-io/streamr/storage/data"
)

// NewRestServer creates a REST server over a loaded catalog snapshot and
// an opened application store.
func NewRestServer(conf *config.Config, catalog *dataset.Catalog, client data.Database) *RestServer {
	return &RestServer{
		Config:     conf,
		Catalog:    catalog,
		ColdStart:  logics.NewColdStart(catalog),
		DataClient: client,
		WebService: new(restful.WebService),
	}
}

// StartHttpServer starts the RESTful API server.
func (s *RestServer) StartHttpServer() {
	// register restful APIs
	s.CreateWebService()
	restful.DefaultContainer.Add(s.WebService)
	// register OpenAPI spec
	specConfig := restfulspec.Config{
		WebServices: restful.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}
	restful.DefaultContainer.Add(restfulspec.NewOpenAPIService(specConfig))
	// register prometheus
	http.Handle("/metrics", promhttp.Handler())

	address := fmt.Sprintf("%s:%d", s.Config.Server.HttpHost, s.Config.Server.HttpPort)
	log.Logger().Info("start http server", zap.String("url", "http://"+address))
	log.Logger().Fatal("failed to start http server",
		zap.Error(http.ListenAndServe(address, nil)))
}
