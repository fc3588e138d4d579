// Package filesystem implements the export and media ports on the local filesystem.
//
// Export checks and opens the chat transcript.
// Resolver finds the file behind a photo reference scraped from the export.
// Store copies resolved photos into the canonical directory under
// collision-free names. Watcher reports changes to the export file.
package filesystem
