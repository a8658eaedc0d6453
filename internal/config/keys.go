package config

const (
	KeyAirtableAPIKey  = "airtable_api_key"
	KeyAirtableBaseURL = "airtable_base_url"
	KeyAirtableTimeout = "airtable_timeout"
	KeyUserAgent       = "user_agent"
	KeyLogLevel        = "log_level"
	KeyTransport       = "transport"
	KeyHost            = "host"
	KeyPort            = "port"
	KeyEndpointPath    = "endpoint_path"
)
