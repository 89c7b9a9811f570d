// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// pageguard handles typed passwords and page cookies. Neither may ever reach
// log output, even in verbose mode. The SecureHandler masks:
//   - attributes whose key names a secret (password, cookie, token, ...)
//   - string values that look like credentials (JWTs, bearer and basic
//     authorization values, long opaque keys, PEM private keys)
//   - any extra keys registered with WithSensitiveKeys
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("evaluated field", "field", id, "password", value) // password=***REDACTED***
//	slog.SetDefault(logger)
package log
