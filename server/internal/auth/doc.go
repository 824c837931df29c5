// Package auth provides API key authentication for ecolab-server.
//
// New(mode, header, key) returns a Guard. Guard.UnaryInterceptor validates
// the key from the named gRPC metadata header on every meter call, and
// Guard.Middleware does the same for the REST API using the HTTP header of
// the same name.
//
// When mode != "apikey" or key == "", every call passes through (useful for
// classroom setups with auth disabled). Read-only HTTP requests (GET, HEAD,
// OPTIONS) always pass so dashboards can poll without a key; anything that
// changes a session needs it. A missing or incorrect key is rejected with
// codes.Unauthenticated or 401.
package auth
