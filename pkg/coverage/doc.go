// Package coverage parses the percentage out of a coverage command's
// captured stdout.
package coverage
