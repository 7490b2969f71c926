// Package auth provides token-based authorisation for the LightGuard API.
//
// Callers present an HS256 JWT whose role claim maps to a static set of
// permissions (viewer → driver → service). There is no user database: tokens
// are minted offline by service tooling with the shared secret.
//
//	lightguard -config lightguard.yaml -issue-token workshop:service
package auth
