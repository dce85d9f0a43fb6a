// Package track defines the point model stored by the nearest-neighbor
// engines: a track's position on the 2-D feature map plus its metadata.
// It also provides the Euclidean distance shared by every engine and the
// BLOB encoding of a track's raw feature profile.
package track
