package weather

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/lox/greenhouse/internal/models"
)

type Format string

const (
	FormatAuto      Format = "auto"
	FormatNREL      Format = "nrel"
	FormatCanonical Format = "canonical"
)

// nrelHeaderRows is the metadata block preceding the column header in
// NSRDB exports.
const nrelHeaderRows = 2

type nrelRow struct {
	Year        int     `csv:"Year"`
	Month       int     `csv:"Month"`
	Day         int     `csv:"Day"`
	Hour        int     `csv:"Hour"`
	Minute      int     `csv:"Minute"`
	Temperature float64 `csv:"Temperature"`
	Humidity    float64 `csv:"Relative Humidity"`
	Pressure    float64 `csv:"Pressure"`
	DNI         float64 `csv:"DNI"`
	Zenith      float64 `csv:"Solar Zenith Angle"`
}

type canonicalRow struct {
	Time        Timestamp `csv:"time"`
	Temperature float64   `csv:"temperature"`
	Humidity    float64   `csv:"humidity"`
	Pressure    float64   `csv:"pressure"`
	Solar       float64   `csv:"solar"`
	SolarAngle  float64   `csv:"solar_angle"`
}

// Read parses a weather CSV. FormatAuto picks canonical when the first
// line names a time column and NREL otherwise.
func Read(r io.Reader, format Format) ([]models.WeatherRecord, error) {
	br := bufio.NewReader(r)
	if format == "" || format == FormatAuto {
		format = sniff(br)
	}

	switch format {
	case FormatNREL:
		return readNREL(br)
	case FormatCanonical:
		return readCanonical(br)
	default:
		return nil, fmt.Errorf("unknown weather format %q", format)
	}
}

func sniff(br *bufio.Reader) Format {
	line, _ := br.Peek(256)
	first, _, _ := strings.Cut(string(line), "\n")
	for _, col := range strings.Split(first, ",") {
		if strings.EqualFold(strings.TrimSpace(col), "time") {
			return FormatCanonical
		}
	}
	return FormatNREL
}

func readNREL(r io.Reader) ([]models.WeatherRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	for i := 0; i < nrelHeaderRows; i++ {
		if _, err := cr.Read(); err != nil {
			return nil, fmt.Errorf("nrel metadata: %w", err)
		}
	}

	var rows []*nrelRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("nrel rows: %w", err)
	}

	records := make([]models.WeatherRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.WeatherRecord{
			Time:        time.Date(row.Year, time.Month(row.Month), row.Day, row.Hour, row.Minute, 0, 0, time.UTC),
			Temperature: row.Temperature,
			Humidity:    row.Humidity,
			Pressure:    row.Pressure,
			Solar:       row.DNI,
			SolarAngle:  row.Zenith,
		})
	}
	return records, nil
}

func readCanonical(r io.Reader) ([]models.WeatherRecord, error) {
	var rows []*canonicalRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("weather rows: %w", err)
	}

	records := make([]models.WeatherRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.WeatherRecord{
			Time:        row.Time.Time,
			Temperature: row.Temperature,
			Humidity:    row.Humidity,
			Pressure:    row.Pressure,
			Solar:       row.Solar,
			SolarAngle:  row.SolarAngle,
		})
	}
	return records, nil
}

// Write encodes records in the canonical format.
func Write(w io.Writer, records []models.WeatherRecord) error {
	rows := make([]*canonicalRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, &canonicalRow{
			Time:        Timestamp{rec.Time},
			Temperature: rec.Temperature,
			Humidity:    rec.Humidity,
			Pressure:    rec.Pressure,
			Solar:       rec.Solar,
			SolarAngle:  rec.SolarAngle,
		})
	}
	return gocsv.Marshal(rows, w)
}
