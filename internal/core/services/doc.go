// Package services contains the core business logic: credential
// resolution across provider-priority chains and summary generation
// dispatch. Services orchestrate calls to driven ports (adapters) and
// are pure Go with no transport concerns.
package services
