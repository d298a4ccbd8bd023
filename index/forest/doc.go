// Package forest provides an approximate kNN index made of randomized
// partition trees. Each tree recursively splits the items with a random
// hyperplane (or, for hamming, a threshold on a random coordinate); queries walk all trees
// best-first by split margin until enough candidates are gathered and then
// rank the candidates exactly.
//
// Building is seeded, so the same vectors and options always produce the same
// forest. The index serializes its raw vectors and options and rebuilds the
// trees on load.
package forest
