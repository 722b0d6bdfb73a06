// Package router resolves an inbound path and method to exactly one
// configured route. Patterns are exact paths or carry a single trailing
// wildcard segment; overlapping routes are disambiguated by explicit
// priority first and pattern specificity second, so a table can express
// "POST needs a stricter policy than GET" and "a sub-path overrides its
// parent" without ambiguity. A table is immutable once built; hot reload
// swaps a whole table through Holder with one atomic store.
package router
