package config

import (
	_ "embed"

	"github.com/oledock/oledock/internal/draw"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	Fps               int      `yaml:"fps"`
	Brightness        int      `yaml:"brightness"`
	OledShift         string   `yaml:"oled_shift"`
	ShowTime          bool     `yaml:"show_time"`
	ShowMedia         bool     `yaml:"show_media"`
	ShowNotifications bool     `yaml:"show_notifications"`
	IdleTimeout       int64    `yaml:"idle_timeout"`
	ApiParam          ApiParam `yaml:"api"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	Port    int64  `yaml:"port"`
	ApiKey  string `yaml:"api_key"`
}

// ShiftMode maps the oled_shift setting to an engine shift mode. Unknown
// values fall back to off.
func (sp *ServerParam) ShiftMode() draw.ShiftMode {
	if sp.OledShift == "simple" {
		return draw.ShiftSimple
	}
	return draw.ShiftOff
}
