// Package loader reads track files into points. CSV and Parquet inputs are
// supported; each row's X coordinate is the mean of its upbeat features
// (valence, acousticness, danceability, energy) and its Y coordinate the
// mean of its ambient features (instrumentalness, liveness, speechiness).
// A malformed row fails the whole load.
package loader
