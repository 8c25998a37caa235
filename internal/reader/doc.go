// Package reader parses source text into terms and clauses.
//
// It covers the standard syntax: quoted and symbolic atoms, variables,
// integers in decimal, hex, octal, binary and 0'c notation, floats, lists,
// curly terms, comments, and operator-precedence expressions over the
// standard operator table. op/3 directives encountered while reading extend
// the table for the rest of the input.
package reader
