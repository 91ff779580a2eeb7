package core

// PowerState tracks the analog power sequencer.
type PowerState uint8

const (
	PowerDisabled PowerState = iota
	PowerEnabling
	PowerEnabled
	PowerDisabling
)

func (s PowerState) String() string {
	switch s {
	case PowerDisabled:
		return "disabled"
	case PowerEnabling:
		return "enabling"
	case PowerEnabled:
		return "enabled"
	case PowerDisabling:
		return "disabling"
	}
	return "power?"
}

// powerEnable brings up the modulator and decimator for the active profile.
// The whole sequence runs with interrupts masked. It always re-runs the
// press settle delay, even when the block is already powered.
func (d *Driver) powerEnable() {
	cs := enterCritical()
	defer cs.exit()

	d.power = PowerEnabling
	p := d.activeProfile()
	rf := d.regs

	setBits(rf, RegPwrMgrDec, actPwrDecEn)
	setBits(rf, RegPwrMgrDSM, actPwrDSMEn)
	setBits(rf, RegStbyPwrMgrDec, stbyPwrDecEn)
	setBits(rf, RegStbyPwrMgrDSM, stbyPwrDSMEn)

	// Hold off the press circuit while the buffers come up
	setBits(rf, RegResetCR4, ignorePresA1)
	setBits(rf, RegResetCR5, ignorePresA2)

	setBits(rf, RegDSMCR17, dsmEnBufVref|dsmEnBufVCM)
	if p.Reference.External() {
		clearBits(rf, RegDSMCR17, dsmEnBufVref)
	}
	if p.InputRange == RangeVssaTo2Vref && !p.Reference.External() {
		setBits(rf, RegDSMREF0, dsmEnBufVrefInn)
	}

	d.delay(PresDelayUs)

	clearBits(rf, RegResetCR4, ignorePresA1)
	clearBits(rf, RegResetCR5, ignorePresA2)

	// Negative charge pump
	setBits(rf, RegPumpCR1, pumpCR1ClkSel|pumpCR1Force)

	// Modulator chopping as configured
	rf.Write8(RegDSMCR2, p.Regs.CR2)

	if d.internalClock {
		setBits(rf, RegPwrMgrClk, actPwrClkEn)
		setBits(rf, RegStbyPwrMgrClk, stbyPwrClkEn)
	}
	setBits(rf, RegPwrMgrPumpClk, actPwrPumpClkEn)
	setBits(rf, RegStbyPwrMgrPumpClk, stbyPwrPumpClkEn)

	d.irq.ClearPending()
	d.irq.Enable()

	d.power = PowerEnabled
	RecordEvent(EvtPowerUp, d.active, uint32(p.Resolution), 0)
}

// powerDisable is the mirror of powerEnable: stop, settle, then power
// down in reverse dependency order.
func (d *Driver) powerDisable() {
	cs := enterCritical()
	defer cs.exit()

	d.power = PowerDisabling
	rf := d.regs

	clearBits(rf, RegDecCR, decStartConv)
	setBits(rf, RegDecSR, decIntrClear)

	setBits(rf, RegResetCR4, ignorePresA1)
	setBits(rf, RegResetCR5, ignorePresA2)

	clearBits(rf, RegDSMCR17, dsmEnBufVref|dsmEnBufVCM)
	clearBits(rf, RegDSMREF0, dsmEnBufVrefInn)

	d.delay(PresDelayUs)

	clearBits(rf, RegResetCR4, ignorePresA1)
	clearBits(rf, RegResetCR5, ignorePresA2)

	clearBits(rf, RegPwrMgrDSM, actPwrDSMEn)
	clearBits(rf, RegPwrMgrDec, actPwrDecEn)
	clearBits(rf, RegStbyPwrMgrDec, stbyPwrDecEn)
	clearBits(rf, RegStbyPwrMgrDSM, stbyPwrDSMEn)

	clearBits(rf, RegPumpCR1, pumpCR1ClkSel|pumpCR1Force)

	if d.internalClock {
		clearBits(rf, RegPwrMgrClk, actPwrClkEn)
		clearBits(rf, RegStbyPwrMgrClk, stbyPwrClkEn)
	}

	clearBits(rf, RegDSMCR2, dsmModChopEn)
	clearBits(rf, RegPwrMgrPumpClk, actPwrPumpClkEn)
	clearBits(rf, RegStbyPwrMgrPumpClk, stbyPwrPumpClkEn)

	d.power = PowerDisabled
	RecordEvent(EvtPowerDown, d.active, 0, 0)
}

// setDSMRef0 writes the reference control register with the press circuit
// overridden, so the reference change cannot glitch the modulator.
func (d *Driver) setDSMRef0(value uint8) {
	cs := enterCritical()
	defer cs.exit()

	rf := d.regs
	setBits(rf, RegResetCR4, ignorePresD1|ignorePresA1)
	setBits(rf, RegResetCR5, ignorePresD2|ignorePresA2)

	rf.Write8(RegDSMREF0, value)

	d.delay(PresDelayUs)

	clearBits(rf, RegResetCR4, ignorePresD1|ignorePresA1)
	clearBits(rf, RegResetCR5, ignorePresD2|ignorePresA2)
}
