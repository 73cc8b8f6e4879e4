// Package models defines the client-side data types of the offline outbox:
// pending actions, suggestions, the persisted snapshot and summary types,
// plus the cached venue catalogue.
package models
