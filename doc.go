// Package kanon anonymizes tabular data by merging small equivalence classes
// of quasi-identifier values until every merged class is shared by at least
// k privacy units.
//
// The API has two phases. Engine.Fit builds an immutable Plan: the
// equivalence classes of the input, the fitted feature encoder, the neighbor
// index over under-sized classes and the resulting merge groups.
// Engine.Transform applies a plan to a dataset and returns a rewritten copy in
// which every row of a grouped class carries its group's representative
// values.
//
//	engine, err := kanon.New(kanon.Config{
//		Columns: column.Options{Categorical: []string{"city"}, Numeric: []string{"age"}},
//		KTarget: 5,
//	})
//	plan, err := engine.Fit(ds)
//	out, err := engine.Transform(ds, plan)
package kanon
