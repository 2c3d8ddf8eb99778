package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kevinbuckley/tripwit/internal/flagx"
	"github.com/kevinbuckley/tripwit/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "30s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	DataDir        string         `json:"data_dir"`
	SyncInterval   timex.Duration `json:"sync_interval"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file selected
// via -c or -config. Missing file path means no overlay; read or parse
// errors panic.
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

	cfg.ServerURL = jc.ServerURL
	cfg.DataDir = jc.DataDir
	cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
}
