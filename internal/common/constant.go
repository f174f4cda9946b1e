// Package common contains shared constants and sentinel errors used across
// TaskKeeper components.
package common

// AccessTokenHeaderName is the gRPC/HTTP metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// SessionIDSize is the number of random bytes behind a session id.
// The hex form is twice as long.
const SessionIDSize = 16
