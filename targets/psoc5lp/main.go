//go:build tinygo && psoc5lp

package main

import (
	"dsadc/core"
	"dsadc/report"
)

func main() {
	uart := newUART()
	core.SetDebugWriter(func(s string) {
		uart.Write([]byte(s))
		uart.Write([]byte("\r\n"))
	})

	startMillis()

	profiles := designProfiles()
	if err := core.CheckRegisterImages(staticRegs, profiles); err != nil {
		core.SetDebugEnabled(true)
		core.DebugPrintln("[DSADC] not started: " + err.Error())
		return
	}

	adc, err := core.NewDriver(core.Config{
		Registers:     mmioRegisters{},
		Interrupt:     adcIRQ,
		Profiles:      profiles,
		Trim:          readTrim(),
		Static:        staticRegs,
		InternalClock: true,
		IRQPriority:   7,
	})
	if err != nil {
		core.SetDebugEnabled(true)
		core.DebugPrintln("[DSADC] " + err.Error())
		return
	}

	adc.Start()
	adc.UseNominalGain()
	adc.StartConvert()

	sampler := report.NewSampler(adc, report.UARTTransmitter{UART: uart}, report.Config{
		Samples: report.DefaultSamples,
		Clock:   core.Millis,
	})
	for {
		sampler.Emit(sampler.Next())
	}
}
