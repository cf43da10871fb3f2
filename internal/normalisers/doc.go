// Package normalisers holds the readers that turn raw document dumps
// into domain documents. Each subpackage handles one input format and
// implements driven.DocumentLoader.
package normalisers
