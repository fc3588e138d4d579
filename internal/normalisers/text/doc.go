// Package text cleans free text taken from chat export messages.
// Cleaning is an ordered list of named steps; entity decoding and markup
// stripping run before boilerplate removal, which runs before whitespace
// collapse. The full list is applied until the output stops changing, so
// normalising already clean text is a no-op.
package text
