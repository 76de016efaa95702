// Package config loads the boot-time configuration for the plant-waterer
// daemon: the plant registry, pin assignments and daemon settings. The file
// is read once at startup; there is no runtime reload.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// Defaults applied for fields left empty in the file.
const (
	DefaultChip      = "gpiochip0"
	DefaultBroker    = "tcp://localhost:1883"
	DefaultHTTPAddr  = ":80"
	DefaultPoll      = 100 * time.Millisecond
	DefaultHeartbeat = 15 * time.Minute
)

// Plant is one registry entry in the config file.
type Plant struct {
	Name string `json:"name"`

	// PumpPin is absent for plants watered by hand.
	PumpPin   *int `json:"pump_pin,omitempty"`
	LedPin    int  `json:"led_pin"`
	ButtonPin *int `json:"button_pin,omitempty"`

	RawMaxDryInterval string `json:"max_dry_interval"`
	RawWaterDuration  string `json:"water_duration,omitempty"`

	MaxDryInterval time.Duration `json:"-"`
	WaterDuration  time.Duration `json:"-"`
}

// Config is the daemon configuration.
type Config struct {
	Chip           string `json:"chip,omitempty"`
	Broker         string `json:"broker,omitempty"`
	HTTPAddr       string `json:"http_addr,omitempty"`
	ErrorLedPin    int    `json:"error_led_pin"`
	ResetButtonPin int    `json:"reset_button_pin"`

	RawPoll          string `json:"poll,omitempty"`
	RawDwell         string `json:"dwell,omitempty"`
	RawSafetyCeiling string `json:"safety_ceiling,omitempty"`
	RawHeartbeat     string `json:"heartbeat,omitempty"`

	Poll          time.Duration `json:"-"`
	Dwell         time.Duration `json:"-"`
	SafetyCeiling time.Duration `json:"-"`
	Heartbeat     time.Duration `json:"-"`

	Plants []Plant `json:"plants"`
}

// Load reads, parses and validates the config file at path. YAML and JSON
// are accepted; unknown fields are rejected in both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse parses and validates config file contents. The path is used to pick
// the format and for error messages.
func Parse(path string, data []byte) (*Config, error) {
	jsonBytes, format, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s config: %w", format, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finish applies defaults, parses duration fields and validates.
func (c *Config) finish() error {
	if c.Chip == "" {
		c.Chip = DefaultChip
	}
	if c.Broker == "" {
		c.Broker = DefaultBroker
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}

	var err error
	if c.Poll, err = parseDurationOrDefault("poll", c.RawPoll, DefaultPoll); err != nil {
		return err
	}
	if c.Dwell, err = parseDurationOrDefault("dwell", c.RawDwell, logic.DefaultDwell); err != nil {
		return err
	}
	if c.SafetyCeiling, err = parseDurationOrDefault("safety_ceiling", c.RawSafetyCeiling, logic.SafetyCeiling); err != nil {
		return err
	}
	if c.Heartbeat, err = parseDurationOrDefault("heartbeat", c.RawHeartbeat, DefaultHeartbeat); err != nil {
		return err
	}

	return c.validate()
}

func (c *Config) validate() error {
	if len(c.Plants) == 0 {
		return fmt.Errorf("config: at least one plant is required")
	}
	if c.ErrorLedPin <= 0 {
		return fmt.Errorf("config: error_led_pin is required")
	}
	if c.ResetButtonPin <= 0 {
		return fmt.Errorf("config: reset_button_pin is required")
	}

	names := map[string]bool{}
	pins := map[int]string{}
	claim := func(pin int, what string) error {
		if prev, ok := pins[pin]; ok {
			return fmt.Errorf("config: pin %d assigned to both %s and %s", pin, prev, what)
		}
		pins[pin] = what
		return nil
	}
	if err := claim(c.ErrorLedPin, "error_led_pin"); err != nil {
		return err
	}
	if err := claim(c.ResetButtonPin, "reset_button_pin"); err != nil {
		return err
	}

	for i := range c.Plants {
		p := &c.Plants[i]
		where := fmt.Sprintf("plants[%d]", i)
		if p.Name == "" {
			return fmt.Errorf("config: %s: name is required", where)
		}
		if names[p.Name] {
			return fmt.Errorf("config: duplicate plant name %q", p.Name)
		}
		names[p.Name] = true

		var err error
		if p.MaxDryInterval, err = parseDurationField(where+".max_dry_interval", p.RawMaxDryInterval); err != nil {
			return err
		}
		if p.MaxDryInterval <= 0 {
			return fmt.Errorf("config: %s: max_dry_interval must be > 0", where)
		}

		if p.LedPin <= 0 {
			return fmt.Errorf("config: %s: led_pin is required", where)
		}
		if err := claim(p.LedPin, where+".led_pin"); err != nil {
			return err
		}

		if p.PumpPin != nil {
			if err := claim(*p.PumpPin, where+".pump_pin"); err != nil {
				return err
			}
			if p.ButtonPin == nil {
				return fmt.Errorf("config: %s: a plant with a pump needs a demand button", where)
			}
			if p.WaterDuration, err = parseDurationField(where+".water_duration", p.RawWaterDuration); err != nil {
				return err
			}
			if p.WaterDuration <= 0 {
				return fmt.Errorf("config: %s: water_duration must be > 0", where)
			}
			if p.WaterDuration >= c.SafetyCeiling {
				return fmt.Errorf("config: %s: water_duration %v must stay below the safety ceiling %v",
					where, p.WaterDuration, c.SafetyCeiling)
			}
		} else if p.RawWaterDuration != "" {
			return fmt.Errorf("config: %s: water_duration is meaningless without a pump", where)
		}

		if p.ButtonPin != nil {
			if err := claim(*p.ButtonPin, where+".button_pin"); err != nil {
				return err
			}
		}
	}
	return nil
}
