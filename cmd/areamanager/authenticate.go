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
	"bufio"
	"fmt"
	"os"
	"strings"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vladk-ml/areamanager/ee"
	"github.com/vladk-ml/areamanager/util"
)

// authenticateAction stores a platform access token so that later imagery
// requests can authenticate. The token comes from the first CLI argument,
// the AREAMANAGER_EE_TOKEN environment variable, or an interactive prompt,
// in that order.
func authenticateAction(c *cli.Context) {
	logContext := &(util.BasicLogContext{})

	token := c.Args().First()
	if token == "" {
		token = os.Getenv("AREAMANAGER_EE_TOKEN")
	}
	if token == "" {
		fmt.Print("Paste platform access token: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			util.LogSimpleErr(logContext, "Failed to read token from stdin: ", err)
			return
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		util.LogAlert(logContext, "No token provided; nothing stored.")
		return
	}

	path := util.GetEETokenFile()
	if err := ee.SaveToken(path, token); err != nil {
		util.LogSimpleErr(logContext, "Failed to store token at `"+path+"`: ", err)
		return
	}

	util.LogAudit(logContext, util.LogAuditInput{Actor: "authenticateAction", Action: "store token", Actee: path, Message: "Stored platform access token", Severity: util.NOTICE})
	fmt.Println("Token stored at " + path)
}
