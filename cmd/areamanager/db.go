package main

import (
	"fmt"

	"github.com/vladk-ml/areamanager/jobs"
	"github.com/vladk-ml/areamanager/util"
)

// getLedger opens the export job ledger at the configured path
func getLedger(ctx util.LogContext) (*jobs.Repository, error) {
	path := util.GetJobsDB()
	util.LogInfo(ctx, fmt.Sprintf("Opening export job ledger at: `%s`", path))
	db, err := jobs.New(path)
	if err != nil {
		return nil, err
	}
	return jobs.NewRepository(db), nil
}

var getLedgerFunc = getLedger
