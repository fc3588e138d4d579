// Package segmenter turns a chat export into product-shaped drafts.
//
// ParseExport walks the exported HTML transcript and yields one RawMessage
// per message block. Segment folds those messages into Drafts: a text block
// opens a group and the photo-only blocks that follow it are attached as
// album continuations.
package segmenter
