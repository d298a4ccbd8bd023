// Package planner decides which under-sized equivalence classes merge into
// which groups.
//
// Classes are visited in ascending index order. Each under-sized class asks a
// neighbor index for its k nearest classes and either joins the group of the
// first neighbor that already has one, or collects neighbors until the summed
// count reaches k and opens a new group. A class that runs out of neighbors
// before either happens stays ungrouped and is reported in Result.Unresolved.
package planner
