// Package upload accepts the registration photo over plain HTTP.
//
// Large binary frames block a WebSocket's event loop, so the photo does not
// travel over the live connection. Instead:
//
//  1. The user selects a file in <input type="file">.
//  2. The thin client POSTs it to the upload endpoint.
//  3. The server records the file's name, declared type and size, discards
//     its bytes, and returns a temp_id.
//  4. The client sends the temp_id as the photo field value.
//  5. The session resolves the temp_id with Store.Lookup.
//
// No file content is kept. Validation works from the declared content type
// only, see File.MediaType.
//
// # Usage
//
//	store := upload.NewMemoryStore(cfg.MaxFileSize, cfg.TempExpiry)
//	go store.Run(ctx, time.Minute)
//	r.Post("/_regform/upload", upload.HandlerWithConfig(store, cfg))
package upload
