// Package password implements credential hashing for shelf.
//
// A per-user salt is combined with the process-wide auth salt (MaskSalt), the
// result salts an Argon2i derivation, and the digest is stored as lowercase hex.
// The byte-level masking is kept for compatibility with existing hashes; it is
// not a key-derivation function and should be replaced once stored hashes can
// be migrated.
//
// Hashing is memory-hard and slow. Request handlers go through Pool, which
// bounds how many derivations run at once and lets callers abandon the wait
// when their context ends.
package password
