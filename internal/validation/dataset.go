package validation

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/weather"
)

// DefaultPressure is the station pressure of the reference site, hPa.
const DefaultPressure = 721.0

// Files locates the inputs of one validation dataset. Each entry may be a
// path or a URL understood by weather.Fetcher.
type Files struct {
	Top        string // roof air logger
	Crop       string // crop level logger
	Air        string // main air logger
	Outside    string // exterior logger
	Exterior   string // hourly export with datetime, humidity, solarradiation
	SolarAngle string // NREL export providing the zenith angle
}

// DirFiles is the conventional layout: numbered logger files, the hourly
// exterior export and solar_angle.csv in one directory.
func DirFiles(dir, exterior string) Files {
	return Files{
		Top:        filepath.Join(dir, "1.csv"),
		Crop:       filepath.Join(dir, "2.csv"),
		Air:        filepath.Join(dir, "3.csv"),
		Outside:    filepath.Join(dir, "4.csv"),
		Exterior:   filepath.Join(dir, exterior),
		SolarAngle: filepath.Join(dir, "solar_angle.csv"),
	}
}

type exteriorRow struct {
	Time     weather.Timestamp `csv:"datetime"`
	Humidity reading           `csv:"humidity"`
	Solar    reading           `csv:"solarradiation"`
}

func readExterior(r io.Reader) (humidity, solar []Point, err error) {
	var rows []*exteriorRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("exterior rows: %w", err)
	}
	for _, row := range rows {
		humidity = append(humidity, Point{Time: row.Time.Time, Value: float64(row.Humidity)})
		solar = append(solar, Point{Time: row.Time.Time, Value: float64(row.Solar)})
	}
	return humidity, solar, nil
}

// Dataset is the merged hourly logger and exterior record.
type Dataset struct {
	Readings []models.SensorReading
	Pressure float64
}

// Load reads, resamples and merges a dataset.
func Load(ctx context.Context, f *weather.Fetcher, files Files) (*Dataset, error) {
	sensors := make([][]Point, 4)
	for i, path := range []string{files.Top, files.Crop, files.Air, files.Outside} {
		rc, err := f.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		points, err := ReadSensor(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sensors[i] = Hourly(points)
	}

	rc, err := f.Open(ctx, files.Exterior)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", files.Exterior, err)
	}
	humidity, solar, err := readExterior(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", files.Exterior, err)
	}

	rc, err = f.Open(ctx, files.SolarAngle)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", files.SolarAngle, err)
	}
	angles, err := weather.Read(rc, weather.FormatNREL)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", files.SolarAngle, err)
	}
	zenith := make([]Point, len(angles))
	for i, a := range angles {
		zenith[i] = Point{Time: a.Time, Value: a.SolarAngle}
	}

	return Merge(sensors[0], sensors[1], sensors[2], sensors[3], humidity, solar, zenith), nil
}

// Merge outer joins the hourly sensor series on time and attaches the
// exterior humidity, solar and zenith nearest in time to each row.
func Merge(top, crop, air, outside, humidity, solar, zenith []Point) *Dataset {
	index := make(map[time.Time]*models.SensorReading)
	set := func(points []Point, field func(*models.SensorReading) *sql.NullFloat64) {
		for _, p := range points {
			r, ok := index[p.Time]
			if !ok {
				r = &models.SensorReading{Time: p.Time}
				index[p.Time] = r
			}
			if !math.IsNaN(p.Value) {
				*field(r) = sql.NullFloat64{Float64: p.Value, Valid: true}
			}
		}
	}
	set(top, func(r *models.SensorReading) *sql.NullFloat64 { return &r.TopTemp })
	set(crop, func(r *models.SensorReading) *sql.NullFloat64 { return &r.CropTemp })
	set(air, func(r *models.SensorReading) *sql.NullFloat64 { return &r.AirTemp })
	set(outside, func(r *models.SensorReading) *sql.NullFloat64 { return &r.OutsideTemp })

	readings := make([]models.SensorReading, 0, len(index))
	for _, r := range index {
		readings = append(readings, *r)
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Time.Before(readings[j].Time) })

	attach := func(points []Point, field func(*models.SensorReading) *sql.NullFloat64) {
		points = sortedValid(points)
		if len(points) == 0 {
			return
		}
		for i := range readings {
			p := points[nearest(points, readings[i].Time)]
			*field(&readings[i]) = sql.NullFloat64{Float64: p.Value, Valid: true}
		}
	}
	attach(zenith, func(r *models.SensorReading) *sql.NullFloat64 { return &r.SolarAngle })
	attach(humidity, func(r *models.SensorReading) *sql.NullFloat64 { return &r.Humidity })
	attach(solar, func(r *models.SensorReading) *sql.NullFloat64 { return &r.Solar })

	return &Dataset{Readings: readings, Pressure: DefaultPressure}
}

func sortedValid(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.Value) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// Weather converts the dataset into the exterior series driving a run.
// Gaps in the exterior logger carry the last seen temperature forward.
func (d *Dataset) Weather() ([]models.WeatherRecord, error) {
	records := make([]models.WeatherRecord, 0, len(d.Readings))
	last := math.NaN()
	for _, r := range d.Readings {
		if r.OutsideTemp.Valid {
			last = r.OutsideTemp.Float64
		}
		if math.IsNaN(last) {
			// no exterior temperature yet; the run starts at the first one
			continue
		}
		records = append(records, models.WeatherRecord{
			Time:        r.Time,
			Temperature: last,
			Humidity:    r.Humidity.Float64,
			Pressure:    d.Pressure,
			Solar:       r.Solar.Float64,
			SolarAngle:  r.SolarAngle.Float64,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %w: no exterior temperature", weather.ErrEmptySeries)
	}
	return records, nil
}

// Initial returns the first recorded air, roof air and humidity values.
func (d *Dataset) Initial() (air, top, rh float64, err error) {
	air, top, rh = math.NaN(), math.NaN(), math.NaN()
	for _, r := range d.Readings {
		if math.IsNaN(air) && r.AirTemp.Valid {
			air = r.AirTemp.Float64
		}
		if math.IsNaN(top) && r.TopTemp.Valid {
			top = r.TopTemp.Float64
		}
		if math.IsNaN(rh) && r.Humidity.Valid {
			rh = r.Humidity.Float64
		}
	}
	if math.IsNaN(air) || math.IsNaN(top) || math.IsNaN(rh) {
		return 0, 0, 0, fmt.Errorf("dataset has no initial air, roof air or humidity reading")
	}
	return air, top, rh, nil
}
