// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenStore: per-user provider credential persistence (cookie-backed)
//   - TokenRefresher: Google access token refresh
//   - TextGenerator: AI summary generation (primary and fallback providers)
//   - Publisher: Google Drive document upload
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
