// Package vptree provides an exact kNN index backed by a vantage-point tree.
// Subtrees are pruned with the triangle inequality, so only true metrics
// (manhattan, euclidean, hamming) are accepted. It serializes using the
// brute-force encoding and rebuilds the tree on load.
package vptree
