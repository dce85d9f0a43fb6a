// Package sqlknn exposes a nearest-neighbor engine to SQL as a virtual
// table:
//
//	CREATE VIRTUAL TABLE nn USING knn;
//	SELECT id, name, distance FROM nn WHERE query MATCH '0.4 0.2 5';
//
// The MATCH argument is "x y [k]"; k defaults to 1. Rows come back nearest
// first. A query without MATCH yields no rows. Module names are shared by
// every database in the process; use one name per searcher.
package sqlknn
