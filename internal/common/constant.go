// Package common contains shared constants and sentinel errors used across
// imagekeeper components.
package common

// AuthorizationHeaderName carries the bearer token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the expected scheme prefix of the authorization header.
const BearerScheme = "Bearer"
