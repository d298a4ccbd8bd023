// Package encoder turns equivalence-class tuples into fixed-length float
// vectors for neighbor search. Categorical columns are frequency encoded and
// numeric columns are median imputed; both are learned by Fit and replayed by
// Transform so that planning and later re-application agree.
package encoder
