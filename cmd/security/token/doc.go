// Package token issues and verifies the signed identity claims handed to API clients.
//
// Tokens are compact HS256 JWTs whose payload carries user_id, email and exp
// (epoch seconds). Verification authenticates the token before decoding it, so
// a token with any altered byte is reported as ErrSignatureInvalid. Expiry has
// no leeway: a claim is rejected from the second it expires.
package token
