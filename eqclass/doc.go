// Package eqclass groups dataset rows into equivalence classes by their exact
// quasi-identifier tuple and counts the distinct privacy units per class.
//
// Classes are keyed by a content fingerprint of the tuple; fingerprint
// collisions are resolved by comparing the tuples themselves, so lookups
// never rely on object identity.
package eqclass
