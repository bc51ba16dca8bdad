// Package sqlite opens SQLite translation sources with the driver selected at
// build time:
//
//   - default: pure Go modernc.org/sqlite (CGO_ENABLED=0 friendly)
//   - -tags cgo_sqlite: mattn/go-sqlite3
//
// Use Open or OpenReadOnly instead of sql.Open so the right driver name is used.
package sqlite

import (
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"
)

// DriverName returns the registered database/sql driver name.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" or "cgo".
func DriverType() string {
	return driverType
}

// IsCGO reports whether mattn/go-sqlite3 is linked in.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database using the selected driver.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenReadOnly opens path in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open(ReadOnlyDSN(path))
}

// ReadOnlyDSN turns path into a read-only file: URI. A plain filesystem path
// is percent-escaped so characters such as '?' and '#' stay part of the name.
// A path already starting with "file:" is taken as a URI and keeps its query.
func ReadOnlyDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + "mode=ro"
	}
	return FileDSN(path) + "?mode=ro"
}

// FileDSN returns path as a file: URI with its name percent-escaped.
func FileDSN(path string) string {
	u := url.URL{Path: filepath.ToSlash(path)}
	return "file:" + u.EscapedPath()
}

// Info describes the driver configuration.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns the active driver configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
