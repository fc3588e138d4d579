// Package jsonfile stores the catalog as a single indented JSON array.
//
// Writes go to a temporary file in the catalog's directory and are renamed
// over the previous catalog, so an interrupted run never leaves a partial
// document. Before a rewrite the previous catalog is copied to the backup
// directory as <name>.<UTC timestamp>.<run id>.json.
package jsonfile
