package config

import (
	"errors"
	"testing"

	"dsadc/core"
)

func TestLoadProfiles(t *testing.T) {
	data := []byte(`{
		"profiles": [
			{"resolution": 16, "input_range": "diff_vref2", "mode": "fast_fir",
			 "coherency": "mid", "counts_per_volt": 64000,
			 "regs": {"CR4": 16, "BUF1": 2}},
			{"resolution": 12, "input_range": "vssa_to_2vref", "reference": "external_p32"}
		],
		"trim": [-2, 3, 1, -4, 0, 0, 5, 7]
	}`)

	cfg, err := LoadConfig(data)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	profiles, err := cfg.CoreProfiles()
	if err != nil {
		t.Fatalf("CoreProfiles failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}

	p := profiles[0]
	if p.ID != 1 || p.InputRange != core.RangeDiffVref2 || p.Mode != core.ModeFastFIR {
		t.Errorf("profile 1 = %+v", p)
	}
	if p.Coherency != core.CoherencyMid || p.CountsPerVolt != 64000 {
		t.Errorf("profile 1 coherency/gain = %v/%d", p.Coherency, p.CountsPerVolt)
	}
	if p.Regs.CR4 != 16 || p.Regs.BUF1 != 2 {
		t.Errorf("profile 1 regs = %+v", p.Regs)
	}
	if p.Reference != core.RefInternal1024 {
		t.Errorf("default reference = %v", p.Reference)
	}

	p = profiles[1]
	if p.ID != 2 || p.Reference != core.RefExternalP32 || p.Mode != core.ModeContinuous {
		t.Errorf("profile 2 = %+v", p)
	}
	if p.CountsPerVolt != 2000 {
		t.Errorf("nominal counts per volt = %d, want 2000", p.CountsPerVolt)
	}
	if p.Coherency != core.CoherencyMid {
		t.Errorf("default coherency for 12 bits = %v, want mid", p.Coherency)
	}
	if p.IdealDecGain != core.IdealGainConst || p.IdealOddDecGain != core.IdealGainConst {
		t.Errorf("default ideal gains = %#x/%#x", p.IdealDecGain, p.IdealOddDecGain)
	}

	trim := cfg.TrimTable()
	if trim.VrefDiff != [2]int8{-2, 3} || trim.Vref16Diff != [2]int8{5, 7} {
		t.Errorf("trim = %+v", trim)
	}
}

func TestLoadProfilesEmpty(t *testing.T) {
	profiles, err := LoadProfiles([]byte(`{}`))
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(profiles))
	}
	if profiles[0].Resolution != 20 || profiles[0].CountsPerVolt != 512000 {
		t.Errorf("default profile = %+v", profiles[0])
	}
}

func TestLoadProfilesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{"profiles": [`},
		{"bad range", `{"profiles": [{"input_range": "diff_vref3"}]}`},
		{"bad reference", `{"profiles": [{"reference": "vdda"}]}`},
		{"bad mode", `{"profiles": [{"mode": "burst"}]}`},
		{"bad coherency", `{"profiles": [{"coherency": "top"}]}`},
		{"too many", `{"profiles": [{}, {}, {}, {}, {}]}`},
		{"resolution", `{"profiles": [{"resolution": 24}]}`},
	}
	for _, tt := range tests {
		if _, err := LoadProfiles([]byte(tt.data)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		} else {
			t.Logf("%s: %v", tt.name, err)
		}
	}

	_, err := LoadProfiles([]byte(`{"profiles": [{"resolution": 7}]}`))
	if !errors.Is(err, core.ErrResolution) {
		t.Errorf("resolution error = %v, want ErrResolution", err)
	}
}

func TestDefaultProfiles(t *testing.T) {
	profiles := DefaultProfiles()
	if len(profiles) != core.MaxProfiles {
		t.Fatalf("got %d default profiles", len(profiles))
	}
	for i, p := range profiles {
		want := nominalCountsPerVolt(p.Resolution, p.InputRange.String())
		if p.CountsPerVolt != want {
			t.Errorf("profile %d counts per volt %d, nominal %d", i+1, p.CountsPerVolt, want)
		}
	}
	if !profiles[3].SingleSampleHighRes() {
		t.Errorf("profile 4 should track completion in software")
	}
}
