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
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vladk-ml/areamanager/aoi"
	"github.com/vladk-ml/areamanager/timerange"
	"github.com/vladk-ml/areamanager/util"
)

// clearAction resets the application to a fresh state: the area file and
// time range file are rewritten empty and the export job ledger is removed.
func clearAction(*cli.Context) {
	logContext := &(util.BasicLogContext{})

	store, err := aoi.NewStore(util.GetAreasFile())
	if err == nil {
		err = store.Clear()
	}
	if err != nil {
		util.LogSimpleErr(logContext, "Failed to clear areas: ", err)
	} else {
		fmt.Println("Cleared areas at " + util.GetAreasFile())
	}

	rangeStore, err := timerange.NewStore(util.GetTimeRangesFile())
	if err == nil {
		err = rangeStore.Clear()
	}
	if err != nil {
		util.LogSimpleErr(logContext, "Failed to clear time ranges: ", err)
	} else {
		fmt.Println("Cleared time ranges at " + util.GetTimeRangesFile())
	}

	if err := os.Remove(util.GetJobsDB()); err != nil && !os.IsNotExist(err) {
		util.LogSimpleErr(logContext, "Failed to remove export job ledger: ", err)
	} else {
		fmt.Println("Removed export job ledger at " + util.GetJobsDB())
	}

	util.LogAudit(logContext, util.LogAuditInput{Actor: "clearAction", Action: "clear data", Actee: util.GetDataDir(), Message: "Cleared stored application data", Severity: util.NOTICE})
}
