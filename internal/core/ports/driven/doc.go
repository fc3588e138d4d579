// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ExportSource: The chat export transcript and its media directory
//   - CatalogStore: Catalog document persistence with backups
//   - MediaResolver: Maps photo references to files on disk
//   - MediaStore: Places photos under canonical names
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Publisher: Remote object storage. Without it, images keep local public paths.
//   - UploadLedger: Remembers uploads across runs. Without it, every image is re-uploaded.
//   - RunStore: Run history. Without it, the summary command has nothing to show.
//   - RunObserver: Receives each finished run, such as the metrics textfile writer.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or pipeline package
package driven
