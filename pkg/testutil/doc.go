// Package testutil provides fixtures for testing cogsync components.
//
// Tests run against real temp directories. An Installation bundles an
// installation root, a template tree and an in-memory manifest that can be
// saved where a run expects it:
//
//	inst := testutil.NewInstallation(t)
//	inst.WriteTemplate("core/hooks/validate.sh", "v1")
//	inst.Provision("hooks/validate.sh", "v1")
//	inst.SaveManifest()
//
// CountingWriter wraps a Writer so tests can assert how many files a run
// wrote.
package testutil
