package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/imagekeeper/internal/flagx"
	"github.com/dmitrijs2005/imagekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI config file. Empty fields
// leave the corresponding defaults untouched.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	SessionDir     string         `json:"session_dir"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c / -config, if any.
// Read and unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.SessionDir != "" {
		cfg.SessionDir = jc.SessionDir
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
