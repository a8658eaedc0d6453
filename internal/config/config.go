package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Init wires environment variables, an optional dotenv file and the root
// command's persistent flags into viper. Flag names use dashes and map onto
// the underscore keys in keys.go.
func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(".env")
	if root != nil {
		root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyAirtableBaseURL, "https://api.airtable.com/v0")
	viper.SetDefault(KeyAirtableTimeout, "30s")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyTransport, TransportStdio)
	viper.SetDefault(KeyHost, "0.0.0.0")
	viper.SetDefault(KeyPort, 8000)
	viper.SetDefault(KeyEndpointPath, "/mcp/jsonrpc")
}

func AirtableAPIKey() string  { return viper.GetString(KeyAirtableAPIKey) }
func AirtableBaseURL() string { return viper.GetString(KeyAirtableBaseURL) }
func LogLevel() string        { return viper.GetString(KeyLogLevel) }
func Host() string            { return viper.GetString(KeyHost) }
func Port() int               { return viper.GetInt(KeyPort) }
func EndpointPath() string    { return viper.GetString(KeyEndpointPath) }

// UserAgent is empty unless set; the client then sends its own default.
func UserAgent() string { return strings.TrimSpace(viper.GetString(KeyUserAgent)) }

func Transport() string {
	return strings.ToLower(strings.TrimSpace(viper.GetString(KeyTransport)))
}

// AirtableTimeout parses airtable_timeout, accepting Go durations ("45s")
// or a bare number of seconds.
func AirtableTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(viper.GetString(KeyAirtableTimeout))
	if raw == "" {
		return 30 * time.Second, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs := viper.GetFloat64(KeyAirtableTimeout)
	if secs <= 0 {
		return 0, fmt.Errorf("invalid %s %q", KeyAirtableTimeout, raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// ValidateTransport rejects transports the server cannot run.
func ValidateTransport(t string) error {
	switch t {
	case TransportStdio, TransportHTTP:
		return nil
	default:
		return fmt.Errorf("unsupported transport %q (want %s or %s)", t, TransportStdio, TransportHTTP)
	}
}
