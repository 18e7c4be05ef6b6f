// Package config loads runtime configuration for the imagekeeper CLI.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the API server
//	-s string   session directory (token storage)
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "session_dir": ".imagekeeper",
//	  "request_timeout": "30s"
//	}
package config
