// Package validation replays recorded greenhouse logger data through the
// simulator and scores the simulated temperatures against it.
package validation

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/lox/greenhouse/internal/weather"
)

// reading is a logger value; blanks read as NaN and a decimal comma is
// accepted.
type reading float64

func (r *reading) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*r = reading(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return err
	}
	*r = reading(v)
	return nil
}

// Point is one timestamped value.
type Point struct {
	Time  time.Time
	Value float64
}

type sensorRow struct {
	Date  weather.Timestamp `csv:"Date"`
	Value reading           `csv:"value"`
}

// valueColumn is the position of the measurement in logger exports.
const valueColumn = 2

// renamedHeader replays a rewritten header before the remaining rows.
type renamedHeader struct {
	*csv.Reader
	header []string
	sent   bool
}

func (r *renamedHeader) Read() ([]string, error) {
	if !r.sent {
		r.sent = true
		return r.header, nil
	}
	return r.Reader.Read()
}

func (r *renamedHeader) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// ReadSensor parses a semicolon separated logger export with a Date
// column and the measurement in the third column.
func ReadSensor(r io.Reader) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("sensor header: %w", err)
	}
	dateCol := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "date") {
			dateCol = i
		}
	}
	if dateCol < 0 {
		return nil, fmt.Errorf("sensor header %v has no Date column", header)
	}
	col := valueColumn
	if col >= len(header) || col == dateCol {
		col = len(header) - 1
	}
	if col == dateCol {
		return nil, fmt.Errorf("sensor header %v has no value column", header)
	}

	renamed := make([]string, len(header))
	for i := range header {
		renamed[i] = fmt.Sprintf("_%d", i)
	}
	renamed[dateCol] = "Date"
	renamed[col] = "value"

	var rows []*sensorRow
	if err := gocsv.UnmarshalCSV(&renamedHeader{Reader: cr, header: renamed}, &rows); err != nil {
		return nil, fmt.Errorf("sensor rows: %w", err)
	}

	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, Point{Time: row.Date.Time, Value: float64(row.Value)})
	}
	return points, nil
}

// Hourly averages points into hour buckets covering the full span from
// the first to the last point. Hours without data are NaN.
func Hourly(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	type acc struct {
		sum float64
		n   int
	}
	buckets := make(map[time.Time]*acc)
	first, last := points[0].Time.Truncate(time.Hour), points[0].Time.Truncate(time.Hour)
	for _, p := range points {
		h := p.Time.Truncate(time.Hour)
		if h.Before(first) {
			first = h
		}
		if h.After(last) {
			last = h
		}
		if math.IsNaN(p.Value) {
			continue
		}
		a, ok := buckets[h]
		if !ok {
			a = &acc{}
			buckets[h] = a
		}
		a.sum += p.Value
		a.n++
	}

	var out []Point
	for h := first; !h.After(last); h = h.Add(time.Hour) {
		v := math.NaN()
		if a, ok := buckets[h]; ok {
			v = a.sum / float64(a.n)
		}
		out = append(out, Point{Time: h, Value: v})
	}
	return out
}

// nearest returns the index of the point closest in time to t. points
// must be sorted and non-empty; ties go to the earlier point.
func nearest(points []Point, t time.Time) int {
	i := sort.Search(len(points), func(i int) bool { return !points[i].Time.Before(t) })
	switch {
	case i == 0:
		return 0
	case i == len(points):
		return len(points) - 1
	}
	if t.Sub(points[i-1].Time) <= points[i].Time.Sub(t) {
		return i - 1
	}
	return i
}
