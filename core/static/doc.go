// Package static serves files from a directory as the site behind the TLS
// server.
//
// # Basic Usage
//
//	site, err := static.Dir("./public",
//		static.WithCacheControl("public, max-age=300"),
//	)
//	if err != nil {
//		return err // directory missing or not a directory
//	}
//
//	pair, err := server.NewPair(cfg, site)
//
// # Security
//
// Directory listing is disabled: a directory URL is served only when the
// directory has an index.html, otherwise it is a 404. Request paths are
// cleaned before lookup, so "../" cannot escape the root.
//
// # Options
//
//   - WithStripPrefix removes a mount prefix before the file lookup
//   - WithNotFound serves a custom handler when no file matches
//   - WithCacheControl sets Cache-Control on every served file
package static
