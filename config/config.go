// Package config loads converter configuration profiles from JSON.
package config

import (
	"encoding/json"
	"fmt"

	"dsadc/core"
)

// ProfileConfig is the JSON form of a core.Profile. Enumerations are
// given by name; register images use the register names as keys.
type ProfileConfig struct {
	Resolution        uint8            `json:"resolution"`
	InputRange        string           `json:"input_range"`
	Reference         string           `json:"reference"`
	Mode              string           `json:"mode"`
	Coherency         string           `json:"coherency"`
	DecimationDivisor int32            `json:"decimation_divisor"`
	CountsPerVolt     int32            `json:"counts_per_volt"`
	ADCClockDivider   uint16           `json:"adc_clock_divider"`
	PumpClockDivider  uint16           `json:"pump_clock_divider"`
	IdealDecGain      uint16           `json:"ideal_dec_gain"`
	IdealOddDecGain   uint16           `json:"ideal_odd_dec_gain"`
	Regs              core.ProfileRegs `json:"regs"`
}

// DriverConfig is the JSON document accepted by LoadConfig.
type DriverConfig struct {
	Profiles      []ProfileConfig `json:"profiles"`
	Trim          [8]int8         `json:"trim"`
	InternalClock bool            `json:"internal_clock"`
	IRQPriority   uint8           `json:"irq_priority"`
	Static        core.StaticRegs `json:"static"`
}

// LoadConfig parses a JSON configuration and applies defaults.
func LoadConfig(jsonData []byte) (*DriverConfig, error) {
	var config DriverConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// LoadProfiles parses a JSON configuration and returns its profiles,
// numbered 1..n in document order.
func LoadProfiles(jsonData []byte) ([]core.Profile, error) {
	config, err := LoadConfig(jsonData)
	if err != nil {
		return nil, err
	}
	return config.CoreProfiles()
}

// applyDefaults fills in missing values with the settings of the
// reference 20 bit configuration
func applyDefaults(config *DriverConfig) {
	if len(config.Profiles) == 0 {
		config.Profiles = []ProfileConfig{DefaultProfileConfigs()[0]}
	}

	for i := range config.Profiles {
		p := &config.Profiles[i]
		if p.Resolution == 0 {
			p.Resolution = 20
		}
		if p.InputRange == "" {
			p.InputRange = "diff_vref"
		}
		if p.Reference == "" {
			p.Reference = "internal_1v024"
		}
		if p.Mode == "" {
			p.Mode = "continuous"
		}
		if p.Coherency == "" {
			p.Coherency = defaultCoherency(p.Resolution)
		}
		if p.IdealDecGain == 0 {
			p.IdealDecGain = core.IdealGainConst
		}
		if p.IdealOddDecGain == 0 {
			p.IdealOddDecGain = core.IdealGainConst
		}
		if p.CountsPerVolt == 0 {
			p.CountsPerVolt = nominalCountsPerVolt(p.Resolution, p.InputRange)
		}
	}
}

// defaultCoherency picks the key byte matching the width results are
// normally read at.
func defaultCoherency(resolution uint8) string {
	switch {
	case resolution > 16:
		return "high"
	case resolution > 8:
		return "mid"
	default:
		return "low"
	}
}

// nominalCountsPerVolt is the ideal gain for a 1.024 V reference:
// full scale counts divided by the span of the range.
func nominalCountsPerVolt(resolution uint8, inputRange string) int32 {
	fullScale := int64(1) << resolution
	// Span in millivolts
	span := int64(2048)
	switch inputRange {
	case "vssa_to_vref":
		span = 1024
	case "vssa_to_2vref":
		span = 2048
	case "vssa_to_vdda":
		span = 5000
	case "vssa_to_6vref":
		span = 6144
	case "diff_vref2":
		span = 1024
	case "diff_vref4":
		span = 512
	case "diff_vref8":
		span = 256
	case "diff_vref16":
		span = 128
	}
	return int32(fullScale * 1000 / span)
}

// CoreProfiles converts the JSON profiles to driver profiles.
func (c *DriverConfig) CoreProfiles() ([]core.Profile, error) {
	out := make([]core.Profile, 0, len(c.Profiles))
	for i, pc := range c.Profiles {
		p, err := pc.profile(uint8(i + 1))
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i+1, err)
		}
		out = append(out, p)
	}
	if err := core.ValidateProfiles(out); err != nil {
		return nil, err
	}
	return out, nil
}

// TrimTable decodes the configured trim row.
func (c *DriverConfig) TrimTable() core.TrimTable {
	var row [8]byte
	for i, v := range c.Trim {
		row[i] = byte(v)
	}
	return core.TrimFromRow(row)
}

func (pc *ProfileConfig) profile(id uint8) (core.Profile, error) {
	r, err := core.ParseInputRange(pc.InputRange)
	if err != nil {
		return core.Profile{}, err
	}
	ref, err := core.ParseReference(pc.Reference)
	if err != nil {
		return core.Profile{}, err
	}
	mode, err := core.ParseMode(pc.Mode)
	if err != nil {
		return core.Profile{}, err
	}
	coher, err := core.ParseCoherency(pc.Coherency)
	if err != nil {
		return core.Profile{}, err
	}
	return core.Profile{
		ID:                id,
		Resolution:        pc.Resolution,
		InputRange:        r,
		Reference:         ref,
		Mode:              mode,
		DecimationDivisor: pc.DecimationDivisor,
		CountsPerVolt:     pc.CountsPerVolt,
		ADCClockDivider:   pc.ADCClockDivider,
		PumpClockDivider:  pc.PumpClockDivider,
		IdealDecGain:      pc.IdealDecGain,
		IdealOddDecGain:   pc.IdealOddDecGain,
		Coherency:         coher,
		Regs:              pc.Regs,
	}, nil
}

// DefaultProfileConfigs returns the reference configuration set: the
// 20 bit differential continuous profile followed by three typical
// alternatives.
func DefaultProfileConfigs() []ProfileConfig {
	return []ProfileConfig{
		{
			Resolution:       20,
			InputRange:       "diff_vref",
			Reference:        "internal_1v024",
			Mode:             "continuous",
			Coherency:        "high",
			CountsPerVolt:    512000,
			ADCClockDivider:  0x0009,
			PumpClockDivider: 0x0013,
			IdealDecGain:     core.IdealGainConst,
			IdealOddDecGain:  core.IdealGainConst,
		},
		{
			Resolution:       16,
			InputRange:       "diff_vref",
			Reference:        "internal_1v024",
			Mode:             "continuous",
			Coherency:        "mid",
			CountsPerVolt:    32000,
			ADCClockDivider:  0x0009,
			PumpClockDivider: 0x0013,
			IdealDecGain:     core.IdealGainConst,
			IdealOddDecGain:  core.IdealGainConst,
		},
		{
			Resolution:       12,
			InputRange:       "vssa_to_2vref",
			Reference:        "internal_1v024",
			Mode:             "fast_filter",
			Coherency:        "mid",
			CountsPerVolt:    2000,
			ADCClockDivider:  0x0004,
			PumpClockDivider: 0x0009,
			IdealDecGain:     core.IdealGainConst,
			IdealOddDecGain:  core.IdealGainConst,
		},
		{
			Resolution:       18,
			InputRange:       "diff_vref",
			Reference:        "internal_1v024",
			Mode:             "single_sample",
			Coherency:        "high",
			CountsPerVolt:    128000,
			ADCClockDivider:  0x0009,
			PumpClockDivider: 0x0013,
			IdealDecGain:     core.IdealGainConst,
			IdealOddDecGain:  core.IdealGainConst,
		},
	}
}

// DefaultProfiles returns DefaultProfileConfigs as driver profiles.
func DefaultProfiles() []core.Profile {
	c := &DriverConfig{Profiles: DefaultProfileConfigs()}
	profiles, err := c.CoreProfiles()
	if err != nil {
		panic("config: default profiles invalid: " + err.Error())
	}
	return profiles
}
