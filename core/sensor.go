package core

import (
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

var _ drivers.Sensor = (*Driver)(nil)

// Update implements drivers.Sensor. For drivers.Voltage it waits for the
// running conversion, reads it and caches the calibrated value.
func (d *Driver) Update(which drivers.Measurement) error {
	if which&drivers.Voltage == 0 {
		return nil
	}
	d.IsConversionDone(true)
	d.voltage = d.CountsToMicrovolts(d.Read32())
	return nil
}

// Voltage returns the value cached by the last Update, in microvolts.
func (d *Driver) Voltage() int32 {
	return d.voltage
}

// Potential returns the cached reading as a physic.ElectricPotential.
func (d *Driver) Potential() physic.ElectricPotential {
	return physic.ElectricPotential(d.voltage) * physic.MicroVolt
}
