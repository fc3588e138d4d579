// Package file provides the TOML configuration store for shelf.
//
// The file uses ordinary TOML tables; keys are exposed flattened in
// dot notation, so
//
//	[upload]
//	bucket = "shop-images"
//
// is read as "upload.bucket".
package file
