// Package config loads healthops settings.
//
// Sources are applied in order: the YAML file with strict ${VAR} expansion,
// then HEALTHOPS_* environment overrides, then defaults. Secret references
// (secretref:<provider>:<ref>) in credential fields are resolved last and
// the result is validated, reporting every problem at once.
package config
