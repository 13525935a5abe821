package weather

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lox/greenhouse/internal/models"
)

const nrelSample = `Source,Location ID,City,State,Country,Latitude,Longitude,Time Zone,Elevation
NSRDB,123456,-,-,-,-17.65,-65.35,-4,2750
Year,Month,Day,Hour,Minute,DHI,DNI,GHI,Temperature,Relative Humidity,Pressure,Solar Zenith Angle
2023,1,1,0,0,0,0,0,8.5,81.2,740,152.3
2023,1,1,1,0,0,0,0,8.1,83.0,740,146.0
2023,1,1,12,0,120,850,1010,19.4,40.5,741,12.8
`

func TestReadNREL(t *testing.T) {
	recs, err := Read(strings.NewReader(nrelSample), FormatAuto)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	noon := recs[2]
	want := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	if !noon.Time.Equal(want) {
		t.Errorf("time = %v, want %v", noon.Time, want)
	}
	if noon.Temperature != 19.4 || noon.Humidity != 40.5 || noon.Pressure != 741 {
		t.Errorf("unexpected values %+v", noon)
	}
	if noon.Solar != 850 {
		t.Errorf("solar should come from DNI, got %v", noon.Solar)
	}
	if noon.SolarAngle != 12.8 {
		t.Errorf("solar angle = %v, want 12.8", noon.SolarAngle)
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	in := []models.WeatherRecord{
		{Time: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), Temperature: 4.5, Humidity: 70, Pressure: 721, Solar: 0, SolarAngle: 140},
		{Time: time.Date(2023, 5, 1, 1, 0, 0, 0, time.UTC), Temperature: 3.9, Humidity: 74, Pressure: 721, Solar: 0, SolarAngle: 128.5},
	}

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "time,temperature,humidity,pressure,solar,solar_angle\n") {
		t.Fatalf("unexpected header: %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	out, err := Read(&buf, FormatAuto)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d records, want %d", len(out), len(in))
	}
	for i := range in {
		got, want := out[i], in[i]
		if !got.Time.Equal(want.Time) || got.Temperature != want.Temperature || got.SolarAngle != want.SolarAngle {
			t.Errorf("record %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestReadUnknownFormat(t *testing.T) {
	if _, err := Read(strings.NewReader(""), Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 2, 11, 14, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2025-02-11 14:30:00",
		"2025-02-11T14:30:00",
		"2025-02-11T14:30:00Z",
		"11/02/2025 14:30",
		"11.02.2025 14:30:00",
	} {
		got, err := ParseTimestamp(s)
		if err != nil {
			t.Errorf("%q: %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%q: got %v, want %v", s, got, want)
		}
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error")
	}
}

func TestValidateRecord(t *testing.T) {
	ok := models.WeatherRecord{Temperature: 12, Humidity: 60, Pressure: 721, Solar: 300, SolarAngle: 40}

	tests := []struct {
		name      string
		mutate    func(r *models.WeatherRecord)
		wantFlags []string
	}{
		{"valid", func(r *models.WeatherRecord) {}, nil},
		{"too hot", func(r *models.WeatherRecord) { r.Temperature = 65 }, []string{FlagTempOutOfRange}},
		{"humidity over 100", func(r *models.WeatherRecord) { r.Humidity = 101 }, []string{FlagHumidityInvalid}},
		{"low pressure", func(r *models.WeatherRecord) { r.Pressure = 101.3 }, []string{FlagPressureOutOfRange}},
		{"negative solar", func(r *models.WeatherRecord) { r.Solar = -2 }, []string{FlagSolarNegative}},
		{"zenith", func(r *models.WeatherRecord) { r.SolarAngle = 200 }, []string{FlagZenithInvalid}},
		{"several", func(r *models.WeatherRecord) { r.Humidity = -1; r.Solar = -1 }, []string{FlagHumidityInvalid, FlagSolarNegative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ok
			tt.mutate(&rec)
			got := ValidateRecord(&rec)
			sort.Strings(got)
			want := append([]string(nil), tt.wantFlags...)
			sort.Strings(want)
			if strings.Join(got, ",") != strings.Join(want, ",") {
				t.Errorf("flags = %v, want %v", got, want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	if _, err := Check(nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("empty: got %v", err)
	}

	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []models.WeatherRecord{
		{Time: t0, Pressure: 1000},
		{Time: t0.Add(time.Hour), Pressure: 1000, Solar: -5},
		{Time: t0.Add(2 * time.Hour), Pressure: 1000},
	}
	issues, err := Check(recs)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(issues) != 1 || issues[0].Index != 1 {
		t.Errorf("issues = %+v", issues)
	}

	recs[2].Time = t0
	if _, err := Check(recs); !errors.Is(err, ErrUnordered) {
		t.Errorf("unordered: got %v", err)
	}
}

func canonicalBody() string {
	return "time,temperature,humidity,pressure,solar,solar_angle\n" +
		"2023-01-01 00:00:00,5,60,721,0,150\n" +
		"2023-01-01 01:00:00,4,62,721,0,140\n"
}

func TestFetcherHTTPRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(canonicalBody()))
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	recs, err := f.Load(context.Background(), FormatAuto, srv.URL+"/weather.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d records, want 2", len(recs))
	}
	if calls.Load() != 2 {
		t.Errorf("expected one retry, got %d calls", calls.Load())
	}
}

func TestFetcherHTTPNotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	if _, err := f.Open(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("404 should not be retried, got %d calls", calls.Load())
	}
}

func TestFetcherConcatenatesFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(a, []byte(canonicalBody()), 0o644); err != nil {
		t.Fatal(err)
	}
	second := strings.ReplaceAll(canonicalBody(), "2023-01-01", "2023-01-02")
	if err := os.WriteFile(b, []byte(second), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(nil)
	recs, err := f.Load(context.Background(), FormatCanonical, a, b)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}

	// same file twice is out of order
	if _, err := f.Load(context.Background(), FormatCanonical, a, a); !errors.Is(err, ErrUnordered) {
		t.Errorf("got %v, want ErrUnordered", err)
	}
}

func TestFetcherUnsupportedScheme(t *testing.T) {
	f := NewFetcher(nil)
	if _, err := f.Open(context.Background(), "gopher://example.com/x"); err == nil {
		t.Error("expected error")
	}
}
