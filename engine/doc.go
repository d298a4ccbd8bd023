// Package engine opens SQLite databases through the modernc.org/sqlite driver
// and registers the distance functions used to inspect stored class vectors:
// kanon_l1, kanon_l2 and kanon_hamming. Vectors are passed as BLOBs produced
// by EncodeVector.
package engine
