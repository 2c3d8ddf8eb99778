package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kevinbuckley/tripwit/internal/flagx"
	"github.com/kevinbuckley/tripwit/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Duration fields use timex.Duration so both string
// values such as "30s" and integer nanoseconds parse. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	RetentionWindow              timex.Duration `json:"retention_window"`
	SharePropagationDelay        timex.Duration `json:"share_propagation_delay"`
	ShareBaseURL                 string         `json:"share_base_url"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into config. When no file is named, nothing happens;
// an unreadable or invalid file panics, matching flag misuse behavior.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.RetentionWindow = time.Duration(c.RetentionWindow.Duration)
	config.SharePropagationDelay = time.Duration(c.SharePropagationDelay.Duration)
	config.ShareBaseURL = c.ShareBaseURL
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
