// Package term defines the term model of the logic language and the
// operations over it: unification, substitution, renaming, equality,
// standard ordering, rendering and canonical encoding.
//
// All terms are immutable. Var, Atom, Integer and Real are values;
// *Struct and *Clause are shared freely and never modified after
// construction. A Substitution is persistent: binding a variable returns a
// new substitution sharing structure with the old one.
//
// # Equality
//
// Equals is strict: same representation, same variable identities.
// StructurallyEquals is the semantic tier: variants are equal, 1 equals 1.0,
// and a *Clause equals the ':-' compound it denotes. Both are symmetric.
//
// # Canonical encoding
//
// MarshalCanonical produces RFC 8785 canonical JSON with NFC-normalised
// strings. ClauseHash and TheoryHash hash that encoding with a domain prefix,
// giving stable content addresses for persisted clauses.
package term
