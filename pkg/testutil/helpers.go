package testutil

import (
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
)

// FP returns the default-algorithm fingerprint of content. Tests use it to
// build predictable manifests.
func FP(content string) fingerprint.Fingerprint {
	return fingerprint.Bytes(fingerprint.Default, []byte(content))
}
