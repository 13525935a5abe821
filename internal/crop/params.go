// Package crop implements the SIMPLE thermal time crop model: daily
// biomass from intercepted radiation scaled by temperature, heat and CO2
// response, with repeated harvest cycles.
package crop

import "fmt"

// Params are the physiological constants of one crop.
type Params struct {
	Name string `yaml:"-" json:"name"`

	ThermalTimeSum float64 `yaml:"tsum" json:"tsum"`
	HarvestIndex   float64 `yaml:"hi" json:"hi"`
	I50A           float64 `yaml:"i50a" json:"i50a"`
	I50B           float64 `yaml:"i50b" json:"i50b"`
	BaseTemp       float64 `yaml:"tbase" json:"tbase"`
	OptimalTemp    float64 `yaml:"topt" json:"topt"`
	RUE            float64 `yaml:"rue" json:"rue"`
	I50MaxHeat     float64 `yaml:"i50maxh" json:"i50maxh"`
	I50MaxWater    float64 `yaml:"i50maxw" json:"i50maxw"`
	HeatTemp       float64 `yaml:"theat" json:"theat"`
	ExtremeTemp    float64 `yaml:"textreme" json:"textreme"`
	SCO2           float64 `yaml:"sco2" json:"sco2"`
	SWater         float64 `yaml:"swater" json:"swater"`
}

func (p Params) Validate() error {
	switch {
	case !(p.ThermalTimeSum > 0):
		return fmt.Errorf("tsum must be positive, got %v", p.ThermalTimeSum)
	case p.OptimalTemp < p.BaseTemp:
		return fmt.Errorf("topt %v below tbase %v", p.OptimalTemp, p.BaseTemp)
	case p.ExtremeTemp < p.HeatTemp:
		return fmt.Errorf("textreme %v below theat %v", p.ExtremeTemp, p.HeatTemp)
	case p.RUE < 0:
		return fmt.Errorf("rue must not be negative, got %v", p.RUE)
	}
	return nil
}
