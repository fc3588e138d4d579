// Package gcs publishes catalog images to a Google Cloud Storage bucket.
//
// Objects are written with the JSON API (google.golang.org/api/storage/v1)
// using service-account credentials, and served from the bucket's public
// URL or a configured CDN base URL.
package gcs
