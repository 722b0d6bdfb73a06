// Package jwt implements the gateway's token-validation boundary on top of
// lestrrat-go/jwx. It verifies signature, lifetime, issuer, and audience, and
// hands the verified claim set to the claims extractor. Keys come from either
// a shared HMAC secret or a JWKS endpoint with a refreshing cache.
package jwt
