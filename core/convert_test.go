package core

import (
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestMillivoltsMicrovoltsAgree(t *testing.T) {
	counts := []int32{-500000, -123456, -32000, -999, -1, 0, 1, 999, 32000, 123456, 500000}
	for _, cpv := range []int32{1e3, 1e4, 1e5, 1e6, 1e7} {
		d, _, _ := newTestDriver(t, testProfiles(), testTrim())
		d.SelectConfiguration(3, false) // 20 bit
		d.SetGain(cpv)

		for _, c := range counts {
			mv := int64(c) * 1000 / int64(cpv)
			if mv > 32767 || mv < -32768 {
				continue // outside the millivolt result range
			}
			gotMV := int64(d.CountsToMillivolts(c))
			gotUV := int64(d.CountsToMicrovolts(c))
			diff := gotUV - gotMV*1000
			if diff < -1000 || diff > 1000 {
				t.Errorf("cpv %d counts %d: %d mV vs %d uV", cpv, c, gotMV, gotUV)
			}
		}
	}
}

func TestMicrovoltCoefficients(t *testing.T) {
	tests := []struct {
		res  uint8
		a, b int32
	}{
		{8, 1000000, 1},
		{11, 1000000, 1},
		{12, 500000, 2},
		{13, 250000, 4},
		{14, 125000, 8},
		{15, 62500, 16},
		{16, 31250, 32},
		{17, 15625, 64},
		{18, 8000, 125},
		{19, 4000, 250},
		{20, 2000, 500},
	}
	for _, tt := range tests {
		c := microvoltCoef(tt.res)
		if c.a != tt.a || c.b != tt.b {
			t.Errorf("res %d: coef = (%d, %d), want (%d, %d)", tt.res, c.a, c.b, tt.a, tt.b)
		}
	}
}

func TestConversionWithOffset(t *testing.T) {
	d, _, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init() // profile 1: 16 bit, 32000 counts/V
	d.UseNominalGain()
	d.SetOffset(320)

	if got := d.CountsToMillivolts(16320); got != 500 {
		t.Errorf("CountsToMillivolts = %d, want 500", got)
	}
	if got := d.CountsToVolts(16320); got != 0.5 {
		t.Errorf("CountsToVolts = %v, want 0.5", got)
	}
	// 31250*16320/1000 - 31250*320/1000 = 510000 - 10000
	if got := d.CountsToMicrovolts(16320); got != 500000 {
		t.Errorf("CountsToMicrovolts = %d, want 500000", got)
	}
	if got := d.CountsToPotential(16320); got != 500*physic.MilliVolt {
		t.Errorf("CountsToPotential = %v, want 500mV", got)
	}
}

func TestDecimationDivisor(t *testing.T) {
	profiles := testProfiles()
	profiles[0].DecimationDivisor = 256
	d, _, _ := newTestDriver(t, profiles, testTrim())
	d.Init()
	d.UseNominalGain()

	left := int32(16000 * 256)
	if got := d.CountsToMillivolts(left); got != 500 {
		t.Errorf("left aligned CountsToMillivolts = %d, want 500", got)
	}
	if got := d.CountsToMicrovolts(left); got != 500000 {
		t.Errorf("left aligned CountsToMicrovolts = %d, want 500000", got)
	}

	// Right aligned profile ignores the divisor
	d.SelectConfiguration(2, false)
	d.UseNominalGain()
	if got := d.CountsToMillivolts(1000); got != 500 {
		t.Errorf("profile 2 CountsToMillivolts = %d, want 500", got)
	}
}

func TestSelectKeepsCalibration(t *testing.T) {
	d, _, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()
	d.SetGain(40000)
	d.SetOffset(7)

	d.SelectConfiguration(2, true)
	if d.Gain() != 40000 {
		t.Errorf("gain after select = %d, want 40000", d.Gain())
	}
	if d.Offset() != 7 {
		t.Errorf("offset after select = %d, want 7", d.Offset())
	}

	d.SelectConfiguration(3, false)
	d.UseNominalGain()
	if d.Gain() != 512000 {
		t.Errorf("nominal gain = %d, want profile 3 nominal 512000", d.Gain())
	}
}

func TestInitLeavesGainUnset(t *testing.T) {
	d, _, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()
	if d.Gain() != 0 {
		t.Errorf("gain after init = %d, want 0 until calibrated", d.Gain())
	}
}

func TestZeroCountsPerVoltPanics(t *testing.T) {
	d, _, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()
	d.SetGain(0)
	expectPanic(t, "millivolts", func() { d.CountsToMillivolts(100) })
}
