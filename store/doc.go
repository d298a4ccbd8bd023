// Package store persists datasets and merge plans in SQLite.
//
// Datasets are read from and written to ordinary tables. Plans are kept in
// kanon_plan as an encoded document, and the class vectors of each plan in
// kanon_plan_class, where the engine distance functions can rank them.
package store
