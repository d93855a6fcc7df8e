// Package config loads the Varal dashboard configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/varal/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. Missing, empty or non-positive fields keep their defaults
//  5. VARAL_API_URL, when set, replaces api_url
//
// Command-line flags in cmd/varal are applied after Load.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8000"
//	poll_seconds = 10
//	stale_seconds = 60
//	feedback_ms = 3500
//	log_file = "~/.local/state/varal/varal.log"
//	log_level = "info"
//
// All fields are optional. Tilde expansion is applied to log_file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error.
package config
