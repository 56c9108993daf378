// Package imasuri parses IMAS data-access URIs and rewrites remote UDA
// references to local file access when the data is present on disk. Local
// reads are dramatically faster than going through the UDA server, so the
// rewrite is applied transparently whenever the files can be found.
package imasuri

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Scheme is the reserved URI scheme for IMAS data entries.
const Scheme = "imas"

// Supported backend tags. Unknown is used when the backend cannot be
// determined from the URI.
const (
	BackendHDF5    = "hdf5"
	BackendNetCDF  = "netcdf"
	BackendASCII   = "ascii"
	BackendMDSplus = "mdsplus"
	BackendUDA     = "uda"
	BackendMemory  = "memory"
	BackendUnknown = "unknown"
)

// URI is the parsed form of an IMAS data-access locator. It is immutable
// after Parse; String and ToLocal derive fresh renderings from filesystem
// state at call time.
type URI struct {
	// Raw is the original string as given.
	Raw string
	// Backend is the storage backend tag (hdf5, netcdf, ascii, mdsplus,
	// uda, memory) or "unknown".
	Backend string
	// IsRemote is true iff the URI carries a network authority component.
	IsRemote bool
	// Server and Port are set for remote URIs only.
	Server string
	Port   *int
	// Path is the filesystem path carried by the path query parameter, or
	// the bare path itself for non-URI input.
	Path string
	// Legacy identifiers from the old pulse-based addressing form.
	Shot     *int
	Run      *int
	Database string
	User     string
	Version  string
}

// Parse builds a URI from a raw locator string. It never fails: anything it
// cannot interpret degrades to backend "unknown" with the raw string kept
// verbatim, and malformed legacy integers are dropped.
func Parse(raw string) *URI {
	u := &URI{Raw: raw, Backend: BackendUnknown}

	if !strings.HasPrefix(raw, Scheme+":") {
		// Bare filesystem path; infer backend from extension.
		u.Path = raw
		if strings.HasSuffix(raw, ".nc") {
			u.Backend = BackendNetCDF
		} else {
			u.Backend = BackendHDF5
		}
		return u
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return u
	}

	if parsed.Host != "" {
		u.IsRemote = true
		u.Server = parsed.Hostname()
		if p := parsed.Port(); p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				u.Port = &n
			}
		}
	}

	q := parsed.Query()

	if b := q.Get("backend"); b != "" {
		u.Backend = b
	} else if seg := firstPathSegment(parsed); seg != "" {
		// Covers the local short form imas:backend?path=...
		u.Backend = seg
	}

	u.Path = q.Get("path")
	u.Shot = intParam(q, "shot")
	u.Run = intParam(q, "run")
	u.Database = q.Get("database")
	u.User = q.Get("user")
	u.Version = q.Get("version")

	return u
}

func firstPathSegment(parsed *url.URL) string {
	if parsed.Opaque != "" {
		return strings.SplitN(parsed.Opaque, "/", 2)[0]
	}
	trimmed := strings.TrimPrefix(parsed.Path, "/")
	if trimmed == "" {
		return ""
	}
	return strings.SplitN(trimmed, "/", 2)[0]
}

// intParam reads an integer query parameter, treating absent or malformed
// values as nil.
func intParam(q url.Values, key string) *int {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// CanConvertToLocal reports whether this remote URI can be served from local
// files. It re-checks the filesystem on every call.
func (u *URI) CanConvertToLocal() bool {
	if !u.IsRemote || u.Path == "" {
		return false
	}
	switch u.Backend {
	case BackendHDF5:
		return fileExists(filepath.Join(u.Path, "master.h5"))
	case BackendNetCDF:
		if strings.HasSuffix(u.Path, ".nc") {
			return fileExists(u.Path)
		}
		return globMatches(u.Path, "*.nc")
	case BackendASCII:
		return globMatches(u.Path, "*.ids")
	default:
		return false
	}
}

// ToLocal returns the short local form when the data is available on disk,
// otherwise the original string. A failed conversion of a remote URI logs a
// warning; inherently-local URIs pass through silently.
func (u *URI) ToLocal() string {
	if !u.CanConvertToLocal() {
		if u.IsRemote {
			log.Warn().
				Str("uri", u.Raw).
				Str("backend", u.Backend).
				Str("path", u.Path).
				Msg("local data not found, keeping remote URI")
		}
		return u.Raw
	}
	return fmt.Sprintf("%s:%s?path=%s", Scheme, u.Backend, u.Path)
}

// String renders the optimal access form: the local rewrite when a remote
// URI has its data on disk, the original string otherwise. The filesystem is
// consulted fresh on every call so availability changes take effect without
// any cache invalidation.
func (u *URI) String() string {
	if u.IsRemote && u.CanConvertToLocal() {
		return fmt.Sprintf("%s:%s?path=%s", Scheme, u.Backend, u.Path)
	}
	return u.Raw
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func globMatches(dir, pattern string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	return err == nil && len(matches) > 0
}
