// Package services implements the driving port interfaces.
//
// The retrieval engine lives here: the keyword index, the discovery
// catalog with relevance scoring, the retrieval tools, and the tool
// registry that exposes them. On top of those sit the two answer
// modes, the bounded agent loop and the fixed pipeline.
//
// Services depend only on domain types and driven ports. They are pure
// Go with no CGO or external dependencies beyond google/uuid and the
// JSON schema validator used by the tool registry.
package services
