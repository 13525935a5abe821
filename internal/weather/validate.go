package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/lox/greenhouse/internal/models"
)

var (
	ErrEmptySeries = errors.New("empty weather series")
	ErrUnordered   = errors.New("weather series not in time order")
)

const (
	FlagTempOutOfRange     = "temp_out_of_range"
	FlagHumidityInvalid    = "humidity_invalid"
	FlagPressureOutOfRange = "pressure_out_of_range"
	FlagSolarNegative      = "solar_negative"
	FlagZenithInvalid      = "zenith_invalid"
	FlagNotFinite          = "not_finite"
)

// ValidateRecord returns the quality flags raised by one record. Pressure
// bounds allow for high altitude sites.
func ValidateRecord(rec *models.WeatherRecord) []string {
	var flags []string

	for _, v := range []float64{rec.Temperature, rec.Humidity, rec.Pressure, rec.Solar, rec.SolarAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return []string{FlagNotFinite}
		}
	}

	if rec.Temperature < -60 || rec.Temperature > 60 {
		flags = append(flags, FlagTempOutOfRange)
	}

	if rec.Humidity < 0 || rec.Humidity > 100 {
		flags = append(flags, FlagHumidityInvalid)
	}

	if rec.Pressure < 300 || rec.Pressure > 1100 {
		flags = append(flags, FlagPressureOutOfRange)
	}

	if rec.Solar < 0 {
		flags = append(flags, FlagSolarNegative)
	}

	if rec.SolarAngle < 0 || rec.SolarAngle > 180 {
		flags = append(flags, FlagZenithInvalid)
	}

	return flags
}

func QualityFlagsToJSON(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	b, _ := json.Marshal(flags)
	return string(b)
}

// Issue is a flagged record in a series.
type Issue struct {
	Index int
	Flags []string
}

// Check verifies the series can drive a run: it must be non-empty and
// strictly increasing in time. Records with quality flags are returned as
// issues but do not fail the check.
func Check(records []models.WeatherRecord) ([]Issue, error) {
	if len(records) == 0 {
		return nil, ErrEmptySeries
	}

	var issues []Issue
	for i := range records {
		if i > 0 && !records[i].Time.After(records[i-1].Time) {
			return issues, fmt.Errorf("%w: record %d at %s follows %s", ErrUnordered, i,
				records[i].Time.Format(TimestampLayout), records[i-1].Time.Format(TimestampLayout))
		}
		if flags := ValidateRecord(&records[i]); len(flags) > 0 {
			issues = append(issues, Issue{Index: i, Flags: flags})
		}
	}
	return issues, nil
}
