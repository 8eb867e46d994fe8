package vfskit

import (
	"context"
	"crypto/md5"  //nolint:gosec // MD5 used for checksum verification, not security
	"crypto/sha1" //nolint:gosec // SHA1 used for checksum verification, not security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ChecksumAlgorithm represents a supported checksum algorithm.
type ChecksumAlgorithm string

const (
	// ChecksumMD5 is the MD5 hash algorithm (128-bit, fast but not cryptographically secure)
	ChecksumMD5 ChecksumAlgorithm = "md5"
	// ChecksumSHA1 is the SHA-1 hash algorithm (160-bit, legacy)
	ChecksumSHA1 ChecksumAlgorithm = "sha1"
	// ChecksumSHA256 is the SHA-256 hash algorithm (256-bit, recommended)
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumSHA512 is the SHA-512 hash algorithm (512-bit, most secure)
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
	// ChecksumCRC32 is the CRC32 checksum (32-bit, fastest, for integrity only)
	ChecksumCRC32 ChecksumAlgorithm = "crc32"
	// ChecksumXXHash is the xxHash algorithm (64-bit, extremely fast)
	ChecksumXXHash ChecksumAlgorithm = "xxhash"
)

// NewHasher creates a new hash.Hash for the given algorithm.
// Returns an error if the algorithm is not supported.
func NewHasher(algorithm ChecksumAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case ChecksumMD5:
		return md5.New(), nil //nolint:gosec // MD5 used for checksum verification, not security
	case ChecksumSHA1:
		return sha1.New(), nil //nolint:gosec // SHA1 used for checksum verification, not security
	case ChecksumSHA256:
		return sha256.New(), nil
	case ChecksumSHA512:
		return sha512.New(), nil
	case ChecksumCRC32:
		return crc32.NewIEEE(), nil
	case ChecksumXXHash:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported checksum algorithm: %s", ErrNotSupported, algorithm)
	}
}

// Checksum streams the file at path through the given algorithm and returns
// the hex-encoded digest.
func Checksum(ctx context.Context, fs FileReader, path UPath, algorithm ChecksumAlgorithm) (string, error) {
	h, err := NewHasher(algorithm)
	if err != nil {
		return "", err
	}
	f, err := fs.OpenRead(ctx, path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Checksums calculates multiple checksums in a single read pass.
// Returns a map of algorithm to hex-encoded checksum.
func Checksums(ctx context.Context, fs FileReader, path UPath, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	hashers := make([]hash.Hash, len(algorithms))
	writers := make([]io.Writer, len(algorithms))
	for i, algo := range algorithms {
		h, err := NewHasher(algo)
		if err != nil {
			return nil, err
		}
		hashers[i] = h
		writers[i] = h
	}

	f, err := fs.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := io.Copy(io.MultiWriter(writers...), f); err != nil {
		return nil, err
	}

	result := make(map[ChecksumAlgorithm]string, len(algorithms))
	for i, algo := range algorithms {
		result[algo] = hex.EncodeToString(hashers[i].Sum(nil))
	}
	return result, nil
}
