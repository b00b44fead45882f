// Package domain defines the core business entities for prdocs.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Session: the authenticated user and their provider tokens
//   - Credential: a resolved provider identity token
//   - DiffSnapshot: an ephemeral view of a pull request diff
//   - GeneratedDocument: markdown content destined for Google Drive
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
