// Package google provides shared infrastructure for the Google Drive
// integration.
//
// This package contains:
//   - Service factories for creating Drive API clients (per-user OAuth
//     token or service-account key file)
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - The userinfo lookup used during the OAuth callback
//
// # OAuth2 Scopes
//
// The Drive integration uses these scopes:
//   - https://www.googleapis.com/auth/drive.file (per-file access)
//   - https://www.googleapis.com/auth/documents
//
// drive.file limits visibility to files the app created, which is all the
// publisher needs.
package google
