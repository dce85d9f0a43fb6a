package loader

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/viant/tracknn/track"
)

// Record is one row of a track file.
type Record struct {
	ID               string  `parquet:"id"`
	Name             string  `parquet:"name"`
	Artists          string  `parquet:"artists"`
	DurationMs       int64   `parquet:"duration_ms"`
	Explicit         int64   `parquet:"explicit"`
	Valence          float64 `parquet:"valence"`
	Acousticness     float64 `parquet:"acousticness"`
	Danceability     float64 `parquet:"danceability"`
	Energy           float64 `parquet:"energy"`
	Instrumentalness float64 `parquet:"instrumentalness"`
	Liveness         float64 `parquet:"liveness"`
	Speechiness      float64 `parquet:"speechiness"`
}

// Validate reports every field that cannot be turned into a point.
func (r *Record) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("id: empty"))
	}
	if r.DurationMs < 0 || r.DurationMs > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("duration_ms: %d out of range", r.DurationMs))
	}
	if r.Explicit != 0 && r.Explicit != 1 {
		errs = append(errs, fmt.Errorf("explicit: %d, want 0 or 1", r.Explicit))
	}
	return errors.Join(errs...)
}

// Profile returns the record's raw features.
func (r *Record) Profile() track.Profile {
	var p track.Profile
	p[track.Valence] = float32(r.Valence)
	p[track.Acousticness] = float32(r.Acousticness)
	p[track.Danceability] = float32(r.Danceability)
	p[track.Energy] = float32(r.Energy)
	p[track.Instrumentalness] = float32(r.Instrumentalness)
	p[track.Liveness] = float32(r.Liveness)
	p[track.Speechiness] = float32(r.Speechiness)
	return p
}

// Point derives the record's map position.
func (r *Record) Point() track.Point {
	return track.Point{
		X:          stat.Mean([]float64{r.Valence, r.Acousticness, r.Danceability, r.Energy}, nil),
		Y:          stat.Mean([]float64{r.Instrumentalness, r.Liveness, r.Speechiness}, nil),
		DurationMs: uint32(r.DurationMs),
		Explicit:   r.Explicit == 1,
		ID:         r.ID,
		Name:       r.Name,
		Artists:    ParseArtists(r.Artists),
	}
}

// Points converts records in order.
func Points(records []Record) []track.Point {
	out := make([]track.Point, len(records))
	for i := range records {
		out[i] = records[i].Point()
	}
	return out
}

// ParseArtists splits an artists cell. Cells written as a list literal,
// e.g. ['A', "B's"], yield one name per element; anything else is a single
// name.
func ParseArtists(cell string) []string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return []string{s}
	}
	s = s[1 : len(s)-1]
	var names []string
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == ',':
			i++
		case c == '\'' || c == '"':
			var b strings.Builder
			j := i + 1
			for ; j < len(s) && s[j] != c; j++ {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				b.WriteByte(s[j])
			}
			names = append(names, b.String())
			i = j + 1
		default:
			j := strings.IndexByte(s[i:], ',')
			if j < 0 {
				j = len(s) - i
			}
			if name := strings.TrimSpace(s[i : i+j]); name != "" {
				names = append(names, name)
			}
			i += j
		}
	}
	return names
}
