// Package utils provides loose type conversion helpers for decoding JSON payloads
// whose field types vary between API versions.
package utils
