package blobstore

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// VersionDelim separates the hex-encoded key from the version id in a
// filename. A dot cannot appear in lowercase hex, so the split is
// unambiguous for any key.
const VersionDelim = "."

// shardSentinel names the shard directory for keys whose hex encoding is
// shorter than two characters (only the empty key).
const shardSentinel = "zz"

func encodeKey(key string) string {
	return hex.EncodeToString([]byte(key))
}

func decodeKeyHex(h string) (string, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return "", fmt.Errorf("%w: malformed hex %q", ErrInvalidKey, h)
	}
	return string(b), nil
}

func shardFor(hexKey string) string {
	if len(hexKey) < 2 {
		return shardSentinel
	}
	return hexKey[:2]
}

func (s *Store) dataDir(bucket string) string {
	return filepath.Join(s.root, bucket, "data")
}

// blobPath returns the file path for (bucket, key, version). An empty
// version yields the unversioned path.
func (s *Store) blobPath(bucket, key, version string) string {
	h := encodeKey(key)
	base := filepath.Join(s.dataDir(bucket), shardFor(h), h)
	if version == "" {
		return base
	}
	return base + VersionDelim + version
}

// decodeFilename splits a shard-directory entry into (key, version).
// Filenames without a delimiter are unversioned.
func decodeFilename(name string) (key, version string, err error) {
	base := name
	if i := strings.Index(name, VersionDelim); i >= 0 {
		base = name[:i]
		version = name[i+1:]
	}
	key, err = decodeKeyHex(base)
	if err != nil {
		return "", "", err
	}
	return key, version, nil
}
