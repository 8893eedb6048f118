// Package hash hashes short secrets and verifies submitted plaintext against
// the stored form.
//
// One-time codes are stored only in hashed form. The algorithm is chosen by
// configuration through New; Plain keeps the code as-is for deployments that
// disable hashing.
package hash
