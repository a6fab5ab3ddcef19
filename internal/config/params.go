package config

import (
	"strconv"
	"strings"

	"github.com/imishinist/congstat/internal/models"
)

// Params returns the analysis settings as tracking run parameters.
func (c *Config) Params() []models.Parameter {
	return []models.Parameter{
		{Key: "sim_duration", Value: c.SimDuration},
		{Key: "flavors", Value: strings.Join(c.Flavors, ",")},
		{Key: "bdp", Value: c.BDP},
		{Key: "rate", Value: strconv.Itoa(c.Rate)},
		{Key: "burst", Value: strconv.Itoa(c.Burst)},
		{Key: "circuits", Value: strconv.Itoa(c.Circuits)},
		{Key: "runs", Value: strconv.Itoa(c.Runs)},
		{Key: "rtt", Value: strconv.Itoa(c.RTT)},
		{Key: "relays", Value: strings.Join(c.Relays, ",")},
		{Key: "entity_format", Value: c.EntityFormat},
		{Key: "extra_layouts", Value: strings.Join(c.ExtraLayouts, ",")},
		{Key: "on_error", Value: c.OnError},
	}
}
