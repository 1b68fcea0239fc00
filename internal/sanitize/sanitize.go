// Package sanitize provides functions for sanitizing names for safe filesystem use.
package sanitize

import "strings"

// Name converts application ids and names to filesystem-safe names.
// Handles the path separators and spaces that show up in application names
// submitted to real clusters ("Spark shell", "local-1700000000000/attempt-1").
func Name(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	return r.Replace(name)
}
