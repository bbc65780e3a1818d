// Package config loads the wordcloud client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/wordcloud/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. WORDCLOUD_API_URL and WORDCLOUD_LOG_DIR override the file; a .env file in
//     the working directory may provide them
//
// # Default Values
//
//   - API URL: http://localhost:8000
//   - Poll interval: 1s (fixed; poll_max_interval > poll_interval enables backoff)
//   - Poll timeout: 10m (0s disables the deadline)
//   - Request timeout: 30s, upload timeout: 5m
//   - Max upload size: 104857600 bytes
//   - Log directory: ~/.local/state/wordcloud
//   - Cloud limit: 100 words
//
// # TOML Format
//
//	api_url = "http://localhost:8000"
//	poll_interval = "1s"
//	poll_max_interval = "1s"
//	poll_timeout = "10m"
//	request_timeout = "30s"
//	upload_timeout = "5m"
//	max_upload_bytes = 104857600
//	log_dir = "~/.local/state/wordcloud"
//	cloud_limit = 100
//
// Durations use Go duration syntax. Negative or malformed durations are
// rejected with a "parse config" error, as is a cloud_limit above 100. A
// malformed .env file in the working directory fails loading; a missing one
// is ignored.
package config
