// Package schema defines the record types held in the local store and
// exchanged with the remote backend.
//
// Record Types
//
// Five collections make up the offline working set:
//
//   - Customer: pulled down from remote, never modified offline
//   - Door: belongs to a customer, pulled down from remote
//   - Inspection: the unit of offline write; carries sync-tracking flags
//   - Photo: captured offline, uploaded to blob storage, never downloaded
//   - SyncStatus: a single record (id "main") tracking sync history
//
// Sync Tracking
//
// Inspections and photos carry a synced flag. synced=false means the record
// exists locally with content the remote side has not yet accepted. An
// inspection additionally carries offline_created, set when its id was minted
// on this device rather than assigned by the remote side. Offline-minted ids
// are durable: upload pushes them as-is and the remote upserts by id.
//
// Lifecycle:
//
//	download:  remote record -> local, synced=true, offline_created=false
//	offline:   new record    -> local, synced=false, offline_created=true
//	upload:    local record  -> remote, then synced=true locally
//
// Validation
//
// Records created locally go through Validate before they are persisted.
// SetDefaults fills optional fields so callers can supply sparse input.
package schema
