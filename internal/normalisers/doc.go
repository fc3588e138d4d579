// Package normalisers holds the text cleaners applied to product copy.
//
// The text subpackage decodes and strips export markup and normalises titles
// and descriptions. It runs during build and again on its own through the
// renormalise command.
package normalisers
