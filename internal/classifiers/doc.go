// Package classifiers holds the keyword helpers shared by the garbage and
// category classifiers. Matching is deterministic and explainable: text is
// case folded once and keywords are matched as substrings or whole words.
package classifiers
