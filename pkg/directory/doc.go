// Package directory holds the faculty and participation model shared by
// every curator command, and the identity key derivation that ties the
// attendance, enrichment and cleanup tables together.
//
// A faculty identity key is derived from the display name:
//
//	directory.DeriveID("Handley", "Jane") // "handley-jane"
//	directory.DeriveID("Fernández", "Rosa") // "fernndez-rosa"
//
// Non-ASCII letters are dropped rather than transliterated, so spelling
// variants of one person can produce two ids. Those are reconciled by the
// override tables in the identity package, never guessed here.
package directory
