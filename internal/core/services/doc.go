// Package services implements the driving port interfaces.
// Services orchestrate the pipeline packages and call out to driven ports
// (adapters) for storage, media and run history.
package services
