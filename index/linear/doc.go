// Package linear provides a brute-force track index that answers
// nearest-neighbor queries by scanning every stored point.
package linear
