package simulation

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/lox/greenhouse/internal/climate"
	"github.com/lox/greenhouse/internal/models"
	"github.com/lox/greenhouse/internal/weather"
)

// Sample is one row of the augmented output series: the exterior record
// followed by the simulated greenhouse state.
type Sample struct {
	Time        weather.Timestamp `csv:"time" json:"time"`
	Temperature float64           `csv:"temperature" json:"temperature"`
	Humidity    float64           `csv:"humidity" json:"humidity"`
	Pressure    float64           `csv:"pressure" json:"pressure"`
	Solar       float64           `csv:"solar" json:"solar"`
	SolarAngle  float64           `csv:"solar_angle" json:"solar_angle"`

	AirTemp     float64 `csv:"gh_t_air" json:"gh_t_air"`
	TopTemp     float64 `csv:"gh_t_top" json:"gh_t_top"`
	BufferTemp  float64 `csv:"gh_t_bottle" json:"gh_t_bottle"`
	GroundTemp  float64 `csv:"gh_t_ground" json:"gh_t_ground"`
	WallExtTemp float64 `csv:"gh_t_wall_ext" json:"gh_t_wall_ext"`
	WallIntTemp float64 `csv:"gh_t_wall_int" json:"gh_t_wall_int"`
	RH          float64 `csv:"gh_humidity" json:"gh_humidity"`
	CropMass    float64 `csv:"crop_mass" json:"crop_mass"`
}

func newSample(rec models.WeatherRecord, s climate.State, cropMass float64) Sample {
	return Sample{
		Time:        weather.Timestamp{Time: rec.Time},
		Temperature: rec.Temperature,
		Humidity:    rec.Humidity,
		Pressure:    rec.Pressure,
		Solar:       rec.Solar,
		SolarAngle:  rec.SolarAngle,
		AirTemp:     s.AirTemp,
		TopTemp:     s.TopTemp,
		BufferTemp:  s.BufferTemp,
		GroundTemp:  s.GroundTemp,
		WallExtTemp: s.WallExtTemp,
		WallIntTemp: s.WallIntTemp,
		RH:          s.RH,
		CropMass:    cropMass,
	}
}

// WriteCSV encodes the series with a header row.
func WriteCSV(w io.Writer, series []Sample) error {
	return gocsv.Marshal(series, w)
}
