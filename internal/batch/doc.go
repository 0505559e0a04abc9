// Package batch reads a file of searches and runs them one after another.
//
// Each non-empty line is one search. A line starting with '@' holds a
// "latitude, longitude" pair, any other line is a search phrase, and lines
// starting with '#' are comments.
package batch
