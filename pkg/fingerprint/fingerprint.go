// Package fingerprint computes stable content digests for installed and
// template files.
//
// A Fingerprint is rendered as "<algorithm>:<hex>", for example
// "sha256:9f86d0...". Manifests written by older provisioning tools carry
// bare 64 character hex digests; those parse as sha256.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/zeebo/blake3"
)

// Algorithm names a digest function.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"

	// Default is used when no algorithm is configured.
	Default = SHA256
)

// Fingerprint is a content digest tagged with its algorithm.
type Fingerprint string

// ParseAlgorithm validates an algorithm name. The empty string selects Default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return Default, nil
	case SHA256:
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown fingerprint algorithm %q", name)
	}
}

func (a Algorithm) newHash() hash.Hash {
	if a == BLAKE3 {
		return blake3.New()
	}
	return sha256.New()
}

// Bytes fingerprints an in-memory payload.
func Bytes(algo Algorithm, data []byte) Fingerprint {
	h := algo.newHash()
	_, _ = h.Write(data)
	return format(algo, h.Sum(nil))
}

// Reader fingerprints everything readable from r.
func Reader(algo Algorithm, r io.Reader) (Fingerprint, error) {
	h := algo.newHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(algo, h.Sum(nil)), nil
}

// File streams the file at path through the digest. Every failure is a
// FINGERPRINT error so callers can skip the file and keep going.
func File(algo Algorithm, path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFingerprint, "cannot open %s", path).
			WithDetail("path", path)
	}
	defer func() {
		_ = file.Close()
	}()

	fp, err := Reader(algo, file)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFingerprint, "cannot read %s", path).
			WithDetail("path", path)
	}
	return fp, nil
}

func format(algo Algorithm, sum []byte) Fingerprint {
	return Fingerprint(string(algo) + ":" + hex.EncodeToString(sum))
}

// Algorithm returns the algorithm the fingerprint was computed with.
func (f Fingerprint) Algorithm() Algorithm {
	algo, _, ok := strings.Cut(string(f.Normalize()), ":")
	if !ok {
		return ""
	}
	return Algorithm(algo)
}

// Hex returns the digest without its algorithm prefix.
func (f Fingerprint) Hex() string {
	_, digest, ok := strings.Cut(string(f.Normalize()), ":")
	if !ok {
		return string(f)
	}
	return digest
}

// Short returns an abbreviated digest for human-facing messages.
func (f Fingerprint) Short() string {
	digest := f.Hex()
	if len(digest) > 12 {
		digest = digest[:12]
	}
	return digest
}

// Normalize lowercases the value and tags bare sha256 hex digests.
func (f Fingerprint) Normalize() Fingerprint {
	s := strings.ToLower(strings.TrimSpace(string(f)))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, ":") && len(s) == sha256.Size*2 {
		return Fingerprint(string(SHA256) + ":" + s)
	}
	return Fingerprint(s)
}

// IsZero reports whether no fingerprint is recorded.
func (f Fingerprint) IsZero() bool {
	return strings.TrimSpace(string(f)) == ""
}

// Equal compares two fingerprints after normalization. Empty values never match.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.IsZero() || other.IsZero() {
		return false
	}
	return f.Normalize() == other.Normalize()
}

func (f Fingerprint) String() string {
	return string(f)
}

// Matching returns the algorithm recorded fingerprints must be compared
// with: recorded's own algorithm when it is a known one, else fallback.
func Matching(recorded Fingerprint, fallback Algorithm) Algorithm {
	switch recorded.Algorithm() {
	case SHA256:
		return SHA256
	case BLAKE3:
		return BLAKE3
	}
	if fallback == "" {
		return Default
	}
	return fallback
}
