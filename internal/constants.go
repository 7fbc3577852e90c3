/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import "os"

const (
	UserAgent      = "topdeck-standings/0.3.0 (+https://github.com/mikeb26/topdeck-standings)"
	DefaultApiUri  = "https://edhtop16.com"
	WebCacheBucket = "bopmatic-topdeck-standings-prod-webcache"

	EnvApiUri      = "TOPDECK_API_URI"
	EnvCacheBucket = "TOPDECK_CACHE_BUCKET"
)

// ApiUri returns the data endpoint base, honoring TOPDECK_API_URI.
func ApiUri() string {
	return envOr(EnvApiUri, DefaultApiUri)
}

// CacheBucket returns the S3 bucket backing the http cache, honoring
// TOPDECK_CACHE_BUCKET.
func CacheBucket() string {
	return envOr(EnvCacheBucket, WebCacheBucket)
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
