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

package util

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	PORT          = "port"
	DATA_DIR      = "data_dir"
	AREAS_FILE    = "areas_file"
	RANGES_FILE   = "ranges_file"
	JOBS_DB       = "jobs_db"
	EE_API_URL    = "ee_api_url"
	EE_PROJECT    = "ee_project"
	EE_TOKEN_FILE = "ee_token_file"
	DRIVE_FOLDER  = "drive_folder"
)

const defaultEEAPIURL = "https://earthengine.googleapis.com/v1"

var config = viper.New()

func init() {
	config.SetDefault(PORT, "8501")
	config.SetDefault(DATA_DIR, "data")
	config.SetDefault(EE_API_URL, defaultEEAPIURL)
	config.SetDefault(DRIVE_FOLDER, "SAR_Exports")
	config.SetEnvPrefix("AREAMANAGER")
	config.AutomaticEnv()

	config.SetConfigName("areamanager")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")
	config.ReadInConfig() // optional; env and defaults cover everything
}

// GetPort returns the port the web server listens on
func GetPort() string {
	return config.GetString(PORT)
}

// GetDataDir returns the directory holding all local state
func GetDataDir() string {
	return config.GetString(DATA_DIR)
}

// GetAreasFile returns the path of the AOI GeoJSON storage file
func GetAreasFile() string {
	if path := config.GetString(AREAS_FILE); path != "" {
		return path
	}
	return filepath.Join(GetDataDir(), "areas.geojson")
}

// GetTimeRangesFile returns the path of the saved time range presets file
func GetTimeRangesFile() string {
	if path := config.GetString(RANGES_FILE); path != "" {
		return path
	}
	return filepath.Join(GetDataDir(), "timeranges.json")
}

// GetJobsDB returns the path of the export job ledger database
func GetJobsDB() string {
	if path := config.GetString(JOBS_DB); path != "" {
		return path
	}
	return filepath.Join(GetDataDir(), "jobs.db")
}

// GetEEAPIURL returns the base URL of the geospatial platform API
func GetEEAPIURL() string {
	return config.GetString(EE_API_URL)
}

// GetEEProject returns the cloud project used for platform requests
func GetEEProject() string {
	project := config.GetString(EE_PROJECT)
	if project == "" {
		LogAlert(&BasicLogContext{}, "No Earth Engine project in the environment. Imagery requests will not be available.")
	}
	return project
}

// GetEETokenFile returns the path of the stored platform access token
func GetEETokenFile() string {
	if path := config.GetString(EE_TOKEN_FILE); path != "" {
		return path
	}
	return filepath.Join(GetDataDir(), "token")
}

// GetDriveFolder returns the cloud drive folder exports are written to
func GetDriveFolder() string {
	return config.GetString(DRIVE_FOLDER)
}

// SetConfig overrides a configuration value, primarily for tests
func SetConfig(key string, value interface{}) {
	config.Set(key, value)
}
