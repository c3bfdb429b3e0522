// Package remote is the HTTP client for the hosted backend: row queries
// and upserts against the REST data API, plus binary uploads to blob
// storage. The sync engine drives it; nothing else in the program talks
// to the network.
package remote

import "context"

// Service is the backend surface the sync engine needs.
//
// Implementations must be safe for concurrent use. All methods take a
// context and honor its cancellation; a canceled request surfaces as a
// RequestError wrapping the context error.
type Service interface {
	// QueryAll fetches every row of a table and decodes the JSON array
	// into dest, which must be a pointer to a slice.
	//
	// orderBy is passed through to the backend ("name", "date.desc");
	// empty means backend default order.
	//
	// Example:
	//   var customers []schema.Customer
	//   err := svc.QueryAll(ctx, "customers", "name", &customers)
	QueryAll(ctx context.Context, table, orderBy string, dest interface{}) error

	// Upsert writes one record into a table, inserting or replacing by
	// primary key. Records created offline keep their locally minted ids,
	// so retrying an upload is idempotent.
	//
	// Example:
	//   err := svc.Upsert(ctx, "inspections", payload)
	Upsert(ctx context.Context, table string, record interface{}) error

	// UploadBlob stores binary data in a storage bucket under the given
	// object path ("<inspection_id>/<filename>"). With opts.Upsert an
	// existing object at that path is overwritten, which makes photo
	// upload retries safe.
	//
	// Example:
	//   err := svc.UploadBlob(ctx, "inspection-photos", photo.StoragePath(), photo.Data, remote.UploadOptions{Upsert: true})
	UploadBlob(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error

	// Online reports whether the backend is reachable right now. Any HTTP
	// response counts as reachable, even an error status; only a transport
	// failure means offline. The probe uses a short timeout so callers can
	// use it on a hot path.
	Online(ctx context.Context) bool
}

// UploadOptions controls blob storage uploads.
type UploadOptions struct {
	// CacheControl sets the object's Cache-Control header, e.g. "3600".
	CacheControl string

	// Upsert allows overwriting an existing object at the same path.
	Upsert bool
}
