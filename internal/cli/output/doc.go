// Package output renders isoauth-cli results as a table, JSON or YAML.
package output
