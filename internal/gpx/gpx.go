// Package gpx reads GPX 1.0/1.1 documents and summarizes their tracks.
package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// ErrNoPoints is returned for a document without any track or route points.
var ErrNoPoints = errors.New("gpx has no track points")

const earthRadiusKm = 6371.0

type document struct {
	Metadata struct {
		Name string `xml:"name"`
	} `xml:"metadata"`
	Name   string  `xml:"name"` // GPX 1.0 keeps the name at the top level
	Tracks []track `xml:"trk"`
	Routes []route `xml:"rte"`
}

type track struct {
	Name     string `xml:"name"`
	Segments []struct {
		Points []point `xml:"trkpt"`
	} `xml:"trkseg"`
}

type route struct {
	Name   string  `xml:"name"`
	Points []point `xml:"rtept"`
}

type point struct {
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Ele  *float64 `xml:"ele"`
	Time string   `xml:"time"`
}

// Summary describes one GPX document.
type Summary struct {
	Name          string
	Points        int
	DistanceKm    float64 // 3D length along the points
	ElevationGain float64 // meters climbed
	MaxElevation  float64
	MeanElevation float64
	Start, End    time.Time // zero when the points carry no timestamps
}

// Duration is the time between the first and last timestamped point.
func (s Summary) Duration() time.Duration {
	if s.Start.IsZero() || s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Timed reports whether the document carries usable timestamps.
func (s Summary) Timed() bool { return s.Duration() > 0 }

// EffortKm folds climbing into distance: every 100 m of ascent counts as one
// extra kilometer.
func (s Summary) EffortKm() float64 { return s.DistanceKm + s.ElevationGain/100 }

// Summarize parses r and computes the summary over all tracks and routes.
func Summarize(r io.Reader) (Summary, error) {
	var doc document
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return Summary{}, fmt.Errorf("parse gpx: %w", err)
	}

	var sum Summary
	sum.Name = firstNonEmpty(doc.Metadata.Name, doc.Name)
	var segments [][]point
	for _, t := range doc.Tracks {
		sum.Name = firstNonEmpty(sum.Name, t.Name)
		for _, seg := range t.Segments {
			segments = append(segments, seg.Points)
		}
	}
	for _, rt := range doc.Routes {
		sum.Name = firstNonEmpty(sum.Name, rt.Name)
		segments = append(segments, rt.Points)
	}

	var eleSum float64
	var eleCount int
	sum.MaxElevation = math.Inf(-1)
	for _, pts := range segments {
		for i, p := range pts {
			sum.Points++
			if p.Ele != nil {
				eleSum += *p.Ele
				eleCount++
				sum.MaxElevation = math.Max(sum.MaxElevation, *p.Ele)
			}
			if ts, ok := parseTime(p.Time); ok {
				if sum.Start.IsZero() || ts.Before(sum.Start) {
					sum.Start = ts
				}
				if ts.After(sum.End) {
					sum.End = ts
				}
			}
			if i == 0 {
				continue
			}
			prev := pts[i-1]
			d := haversineKm(prev.Lat, prev.Lon, p.Lat, p.Lon)
			if prev.Ele != nil && p.Ele != nil {
				dz := *p.Ele - *prev.Ele
				if dz > 0 {
					sum.ElevationGain += dz
				}
				d = math.Sqrt(d*d + (dz/1000)*(dz/1000))
			}
			sum.DistanceKm += d
		}
	}
	if sum.Points == 0 {
		return Summary{}, ErrNoPoints
	}
	if eleCount == 0 {
		sum.MaxElevation = 0
	} else {
		sum.MeanElevation = eleSum / float64(eleCount)
	}
	return sum, nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
