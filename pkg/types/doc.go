// Package types defines the data shared across cogsync: the manifest and its
// entries, template categories, the pack selection, per-file outcomes and the
// run report built from them.
package types
