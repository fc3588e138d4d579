// Package memory provides in-memory implementations of the driven ports.
// They back unit tests and dry runs that must not touch the filesystem.
package memory
