// Package id generates prefixed unique identifiers for dataset snapshots
// and exports.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used across the application.
const (
	PrefixSnapshot = "snap"
	PrefixExport   = "exp"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "snap-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly and compact, which matters because snapshot IDs
// travel in query strings and export filenames.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails. Use only
// where failure should crash the program, such as during snapshot creation
// at startup.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
