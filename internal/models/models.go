package models

import (
	"database/sql"
	"time"
)

// WeatherRecord is one hourly exterior observation driving a run.
type WeatherRecord struct {
	Time        time.Time
	Temperature float64 // C
	Humidity    float64 // %
	Pressure    float64 // hPa
	Solar       float64 // W/m2, direct normal
	SolarAngle  float64 // zenith, degrees
}

// SensorReading is one hourly row of in-greenhouse logger data merged
// with the exterior conditions. Missing sensors are invalid.
type SensorReading struct {
	Time        time.Time
	TopTemp     sql.NullFloat64
	CropTemp    sql.NullFloat64
	AirTemp     sql.NullFloat64
	OutsideTemp sql.NullFloat64
	Humidity    sql.NullFloat64
	Solar       sql.NullFloat64
	SolarAngle  sql.NullFloat64
}

type RunKind string

const (
	RunSimulate RunKind = "simulate"
	RunBaseline RunKind = "baseline"
	RunValidate RunKind = "validate"
	RunOptimize RunKind = "optimize"
)

// Run is a stored summary of one command invocation.
type Run struct {
	ID         int64
	Kind       RunKind
	Crop       string
	Source     string // weather or sensor location
	Profile    string // JSON parameters
	Records    int
	Unstable   bool
	Cycles     float64
	Biomass    float64
	Yield      float64
	Score      sql.NullFloat64 // validation RMSE or best objective
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Error      sql.NullString
}

// Finished reports whether the run has been completed, successfully or not.
func (r *Run) Finished() bool { return r.FinishedAt.Valid }

// Trial is one evaluated parameter set of an optimisation run.
type Trial struct {
	ID        int64
	RunID     int64
	Number    int
	Params    string // JSON
	Value     float64
	Unstable  bool
	CreatedAt time.Time
}
