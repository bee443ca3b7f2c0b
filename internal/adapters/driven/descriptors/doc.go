// Package descriptors groups the read-only descriptor sources:
// remote serves payloads over HTTP and local reads them from a directory.
// The writable SQLite store lives under storage/sqlite.
package descriptors
