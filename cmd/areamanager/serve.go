// Copyright 2024, the AreaManager authors.
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
	"log"
	"net/http"

	"github.com/gorilla/mux"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vladk-ml/areamanager/aoi"
	"github.com/vladk-ml/areamanager/ee"
	"github.com/vladk-ml/areamanager/jobs"
	"github.com/vladk-ml/areamanager/metrics"
	"github.com/vladk-ml/areamanager/sar"
	"github.com/vladk-ml/areamanager/timerange"
	"github.com/vladk-ml/areamanager/util"
	"github.com/vladk-ml/areamanager/web"
)

func getPortStr() string {
	return ":" + util.GetPort()
}

func createRouter(ctx util.LogContext) (*mux.Router, error) {
	store, err := aoi.NewStore(util.GetAreasFile())
	if err != nil {
		return nil, err
	}
	rangeStore, err := timerange.NewStore(util.GetTimeRangesFile())
	if err != nil {
		return nil, err
	}
	ledger, err := getLedgerFunc(ctx)
	if err != nil {
		return nil, err
	}
	eeContext := ee.NewContext()

	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	router.HandleFunc("/health", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	router.Handle("/metrics", metrics.Handler())

	router.Handle("/api/areas", aoi.NewAreasHandler(store))
	router.Handle("/api/areas/{name}", aoi.NewAreaHandler(store))

	router.Handle("/api/sar/preview", sar.NewPreviewHandler(store, eeContext))
	router.Handle("/api/sar/statistics", sar.NewStatisticsHandler(store, eeContext))
	router.Handle("/api/export", sar.NewExportHandler(store, eeContext, ledger))

	router.Handle("/api/jobs", jobs.NewListHandler(ledger))
	router.Handle("/api/jobs/{id}", jobs.NewGetHandler(ledger))

	router.Handle("/api/timeranges", timerange.NewRangesHandler(rangeStore))
	router.Handle("/api/timeranges/{name}", timerange.NewRangeHandler(rangeStore))

	router.PathPrefix("/").Handler(web.Handler())

	return router, nil
}

func serveAction(*cli.Context) {
	logContext := &(util.BasicLogContext{})

	portStr := getPortStr()

	if router, err := createRouter(logContext); err == nil {
		util.LogInfo(logContext, "Starting areamanager server on "+portStr)
		launchServerFunc(portStr, router)
	} else {
		util.LogSimpleErr(logContext, "Failed to create router: ", err)
	}
}

var launchServerFunc = launchServer

func launchServer(portStr string, router *mux.Router) {
	server := http.Server{
		Addr:    portStr,
		Handler: router,
	}

	log.Fatal(server.ListenAndServe())
}
