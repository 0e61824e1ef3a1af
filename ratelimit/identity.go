package ratelimit

import "strings"

// identityHeaders are consulted in order; the first populated one wins.
var identityHeaders = []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"}

// FallbackIdentity is used when no proxy header is present.
const FallbackIdentity = "127.0.0.1"

// ClientIdentity derives the client identity from request headers. get
// returns a header value by name, e.g. fiber's Ctx.Get or http.Header.Get.
func ClientIdentity(get func(name string) string) string {
	for _, name := range identityHeaders {
		v := strings.TrimSpace(get(name))
		if v == "" {
			continue
		}
		// X-Forwarded-For is "client, proxy1, proxy2".
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
		if v != "" {
			return v
		}
	}
	return FallbackIdentity
}
