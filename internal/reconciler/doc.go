// Package reconciler matches photo references scraped from the export to
// files on disk, places them under collision-free canonical names and
// optionally publishes them to remote storage.
//
// Filesystem and network access go through the driven ports so the
// reconciler can be exercised with in-memory fakes.
package reconciler
