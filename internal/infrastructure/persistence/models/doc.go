// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the domain layer free
// from ORM concerns. The cart snapshot payload is stored opaquely; only the
// header fields are lifted into columns for diagnostics.
package models
