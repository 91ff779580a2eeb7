//go:build tinygo && psoc5lp

package main

import (
	"runtime/volatile"
	"unsafe"

	"dsadc/core"
)

// Physical addresses of the converter registers. The DEC and DSM blocks
// are fixed function; power manager bits, clock dividers and the charge
// pump follow the placement in this design's cyfitter.h.
var regAddr = [core.NumRegs]uintptr{
	core.RegDecCR:     0x4000E000,
	core.RegDecSR:     0x4000E001,
	core.RegDecShift1: 0x4000E002,
	core.RegDecShift2: 0x4000E003,
	core.RegDecDR2:    0x4000E004,
	core.RegDecDR2H:   0x4000E005,
	core.RegDecDR1:    0x4000E006,
	core.RegDecOCOR:   0x4000E008,
	core.RegDecOCORM:  0x4000E009,
	core.RegDecOCORH:  0x4000E00A,
	core.RegDecGCOR:   0x4000E00C,
	core.RegDecGCORH:  0x4000E00D,
	core.RegDecGVAL:   0x4000E00E,
	core.RegDecSAMP:   0x4000E010,
	core.RegDecSAMPM:  0x4000E011,
	core.RegDecSAMPH:  0x4000E012,
	core.RegDecCOHER:  0x4000E014,

	core.RegDSMCR0:  0x40014600,
	core.RegDSMCR1:  0x40014601,
	core.RegDSMCR2:  0x40014602,
	core.RegDSMCR3:  0x40014603,
	core.RegDSMCR4:  0x40014604,
	core.RegDSMCR5:  0x40014605,
	core.RegDSMCR6:  0x40014606,
	core.RegDSMCR7:  0x40014607,
	core.RegDSMCR8:  0x40014608,
	core.RegDSMCR9:  0x40014609,
	core.RegDSMCR10: 0x4001460A,
	core.RegDSMCR11: 0x4001460B,
	core.RegDSMCR12: 0x4001460C,
	core.RegDSMCR13: 0x4001460D,
	core.RegDSMCR14: 0x4001460E,
	core.RegDSMCR15: 0x4001460F,
	core.RegDSMCR16: 0x40014610,
	core.RegDSMCR17: 0x40014611,

	core.RegDSMREF0: 0x40014612,
	core.RegDSMREF1: 0x40014613,
	core.RegDSMREF2: 0x40014614,
	core.RegDSMREF3: 0x40014615,
	core.RegDSMDEM0: 0x40014616,
	core.RegDSMDEM1: 0x40014617,
	core.RegDSMBUF0: 0x4001461A,
	core.RegDSMBUF1: 0x4001461B,
	core.RegDSMBUF2: 0x4001461C,
	core.RegDSMBUF3: 0x4001461D,
	core.RegDSMMISC: 0x4001461E,
	core.RegDSMCLK:  0x4001461F,
	core.RegDSMOUT0: 0x40014620,
	core.RegDSMOUT1: 0x40014621,

	core.RegPwrMgrDec:         0x400043AA, // PM_ACT_CFG10
	core.RegPwrMgrDSM:         0x400043A4, // PM_ACT_CFG4
	core.RegStbyPwrMgrDec:     0x400043BA, // PM_STBY_CFG10
	core.RegStbyPwrMgrDSM:     0x400043B4, // PM_STBY_CFG4
	core.RegPwrMgrClk:         0x400043A2, // PM_ACT_CFG2
	core.RegStbyPwrMgrClk:     0x400043B2, // PM_STBY_CFG2
	core.RegPwrMgrPumpClk:     0x400043A0, // PM_ACT_CFG0
	core.RegStbyPwrMgrPumpClk: 0x400043B0, // PM_STBY_CFG0
	core.RegResetCR4:          0x400046F4,
	core.RegResetCR5:          0x400046F5,
	core.RegPumpCR1:           0x40004621,

	core.RegADCClkDiv:   0x40004080, // CLKDIST_DCFG0_CFG0
	core.RegADCClkDivH:  0x40004081,
	core.RegPumpClkDiv:  0x40004084, // CLKDIST_DCFG1_CFG0
	core.RegPumpClkDivH: 0x40004085,
}

// mmioRegisters implements core.RegisterFile on the peripheral bus.
type mmioRegisters struct{}

func (mmioRegisters) reg(r core.Reg) *volatile.Register8 {
	return (*volatile.Register8)(unsafe.Pointer(regAddr[r]))
}

// Read8 implements core.RegisterFile.
func (m mmioRegisters) Read8(r core.Reg) uint8 {
	return m.reg(r).Get()
}

// Write8 implements core.RegisterFile.
func (m mmioRegisters) Write8(r core.Reg, v uint8) {
	m.reg(r).Set(v)
}
