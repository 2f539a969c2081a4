package proxy

// Config is the relay server configuration.
type Config struct {
	// Address to listen on (e.g., ":8000")
	ListenAddr string

	// Open WebUI base URL (e.g., "http://localhost:3000")
	UpstreamURL string

	// APIKey is sent as a bearer token to Open WebUI.
	// Leave empty to send no Authorization header.
	APIKey string
}
