// Package secret keeps credentials out of healthops configuration files.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Secret references resolved by providers (see Provider and Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:file:/run/secrets/postgres_dsn
//   - Inline use:  Bearer secretref:env:STATUS_TOKEN
package secret
