// Package services holds the shared error taxonomy for external collaborators.
//
// Catalog adapters tag failures with the sentinel errors defined here so the
// executor can classify per-item outcomes (not found, permission denied,
// transient) without knowing which backend produced them.
package services
