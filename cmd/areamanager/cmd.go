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
	cli "gopkg.in/urfave/cli.v1"
)

var commands = cli.Commands{
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the areamanager webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the AreaManager CLI",
		Action:  versionAction,
	},
	cli.Command{
		Name:    "authenticate",
		Aliases: []string{"a"},
		Usage:   "Store a geospatial platform access token for imagery requests",
		Action:  authenticateAction,
	},
	cli.Command{
		Name:    "clear",
		Aliases: []string{"c"},
		Usage:   "Remove all stored areas, time ranges, and export job records",
		Action:  clearAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "areamanager"
	app.Usage = "Launch an areamanager process"
	app.Commands = commands
	return
}
