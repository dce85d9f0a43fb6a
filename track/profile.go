package track

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Feature names of a raw profile, in storage order.
const (
	Valence = iota
	Acousticness
	Danceability
	Energy
	Instrumentalness
	Liveness
	Speechiness
	ProfileLen
)

// Profile holds the seven normalized audio features a point was derived from.
type Profile [ProfileLen]float32

// EncodeProfile encodes p as a little-endian sequence of IEEE 754 float32
// values suitable for a SQLite BLOB column.
func EncodeProfile(p Profile) []byte {
	b := make([]byte, ProfileLen*4)
	for i, v := range p {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// DecodeProfile decodes a BLOB produced by EncodeProfile.
func DecodeProfile(b []byte) (Profile, error) {
	var p Profile
	if len(b) != ProfileLen*4 {
		return p, fmt.Errorf("track: invalid profile blob length %d, want %d", len(b), ProfileLen*4)
	}
	for i := range p {
		p[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return p, nil
}
