// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered: a .env file in the working directory (optional) is
loaded into the environment, the environment is read into Config, and
command-line flags override both.

# CLI Flags and Environment Variables

	-p, --port            PORT                    Server port (default 3318)
	-d, --database-url    DATABASE_URL            Database URL (required)
	-t, --database-type   DATABASE_TYPE           sqlite or postgres (default sqlite)
	--session-ttl         SESSION_TTL             Login session lifetime (default 24h)
	--session-sweep       SESSION_SWEEP_INTERVAL  Expired session sweep (default 10m)
	--bcrypt-cost         BCRYPT_COST             Password hash cost (default 10)
	--log-level           LOG_LEVEL               debug, info, warn, error
	--log-format          LOG_FORMAT              text or json
	--cors-origin         CORS_ORIGIN             Allowed origin (default *)

# Validation

ParseFlags returns an error if the database URL is missing, the database
type is unknown, or any value is out of range.
*/
package cliparse
