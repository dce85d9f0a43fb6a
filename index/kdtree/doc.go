// Package kdtree provides a 2-D KD-tree track index. Even depths split on
// X, odd depths on Y. The tree supports unbalanced incremental insertion,
// median-balanced bulk construction and branch-and-bound k-nearest-neighbor
// search.
package kdtree
