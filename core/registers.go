package core

// Delta-Sigma modulator (DSM) and decimator (DEC) register map.
// Based on the PSoC 5LP TRM, DelSig ADC component v3.20.
// Targets translate a Reg to a physical address; host builds use SimRegisters.

// Reg identifies one 8-bit register of the converter block.
type Reg uint8

// Decimator registers
const (
	RegDecCR     Reg = iota // Control: start conversion, mode
	RegDecSR                // Status: conversion done, interrupt enable/clear
	RegDecShift1            // Input shift
	RegDecShift2            // Output shift
	RegDecDR2               // Decimation ratio, second stage
	RegDecDR2H              // Decimation ratio, second stage high
	RegDecDR1               // Decimation ratio, first stage
	RegDecOCOR              // Offset correction low
	RegDecOCORM             // Offset correction mid
	RegDecOCORH             // Offset correction high
	RegDecGCOR              // Gain correction low
	RegDecGCORH             // Gain correction high
	RegDecGVAL              // Gain correction valid bits minus one
	RegDecCOHER             // Sample coherency key
	RegDecSAMP              // Sample low byte
	RegDecSAMPM             // Sample middle byte
	RegDecSAMPH             // Sample high byte

	// Modulator control
	RegDSMCR0
	RegDSMCR1
	RegDSMCR2 // Chopping
	RegDSMCR3
	RegDSMCR4
	RegDSMCR5
	RegDSMCR6
	RegDSMCR7
	RegDSMCR8
	RegDSMCR9
	RegDSMCR10
	RegDSMCR11
	RegDSMCR12
	RegDSMCR13
	RegDSMCR14
	RegDSMCR15
	RegDSMCR16
	RegDSMCR17 // Reference and common-mode buffer enables

	// Modulator reference, buffers, misc
	RegDSMREF0
	RegDSMREF1
	RegDSMREF2
	RegDSMREF3
	RegDSMDEM0
	RegDSMDEM1
	RegDSMBUF0
	RegDSMBUF1 // Input buffer gain
	RegDSMBUF2
	RegDSMBUF3
	RegDSMCLK
	RegDSMMISC
	RegDSMOUT0
	RegDSMOUT1

	// Power manager, analog reset and charge pump
	RegPwrMgrDec
	RegPwrMgrDSM
	RegStbyPwrMgrDec
	RegStbyPwrMgrDSM
	RegPwrMgrClk
	RegStbyPwrMgrClk
	RegPwrMgrPumpClk
	RegStbyPwrMgrPumpClk
	RegResetCR4
	RegResetCR5
	RegPumpCR1

	// Clock component dividers
	RegADCClkDiv
	RegADCClkDivH
	RegPumpClkDiv
	RegPumpClkDivH

	NumRegs
)

// DEC_CR bits
const (
	decStartConv uint8 = 0x01
	decModeMask  uint8 = 0x06
	decModeShift       = 1
)

// DEC_SR bits
const (
	decConvDone  uint8 = 0x01
	decIntrEn    uint8 = 0x02
	decIntrClear uint8 = 0x04
)

// DEC_COHER bits
const (
	decSampKeyMask uint8 = 0x03
)

// Power manager bits
const (
	actPwrDecEn      uint8 = 0x01
	actPwrDSMEn      uint8 = 0x01
	stbyPwrDecEn     uint8 = 0x01
	stbyPwrDSMEn     uint8 = 0x01
	actPwrClkEn      uint8 = 0x02
	stbyPwrClkEn     uint8 = 0x02
	actPwrPumpClkEn  uint8 = 0x08
	stbyPwrPumpClkEn uint8 = 0x08
)

// Analog reset (press circuit override) bits
const (
	ignorePresA1 uint8 = 0x04
	ignorePresD1 uint8 = 0x08
	ignorePresA2 uint8 = 0x04
	ignorePresD2 uint8 = 0x08
)

// Modulator bits
const (
	dsmEnBufVref    uint8 = 0x01 // DSM_CR17 REFBUF0
	dsmEnBufVCM     uint8 = 0x02 // DSM_CR17 VCMBUF0
	dsmEnBufVrefInn uint8 = 0x10 // DSM_REF0 REFBUF1
	dsmModChopEn    uint8 = 0x08 // DSM_CR2
	dsmGainMask     uint8 = 0x0C // DSM_BUF1
	dsmGainShift          = 2
)

// Charge pump
const (
	pumpCR1ClkSel uint8 = 0x40
	pumpCR1Force  uint8 = 0x20
)

const (
	// PresDelayUs is the press circuit settling time in microseconds.
	PresDelayUs = 3

	// IdealGainConst is 1.0 in GCOR fixed point.
	IdealGainConst = 0x8000

	// MaxGainWidth is the widest GCOR value the decimator accepts.
	MaxGainWidth = 16

	// maxGVAL is the GVAL register value for a full width GCOR.
	maxGVAL = MaxGainWidth - 1

	// MaxGainCorrection is the largest representable GCOR multiplier.
	MaxGainCorrection = 1.9999
)

var regNames = [NumRegs]string{
	"DEC_CR", "DEC_SR", "DEC_SHIFT1", "DEC_SHIFT2", "DEC_DR2", "DEC_DR2H", "DEC_DR1",
	"DEC_OCOR", "DEC_OCORM", "DEC_OCORH", "DEC_GCOR", "DEC_GCORH", "DEC_GVAL",
	"DEC_COHER", "DEC_SAMP", "DEC_SAMPM", "DEC_SAMPH",
	"DSM_CR0", "DSM_CR1", "DSM_CR2", "DSM_CR3", "DSM_CR4", "DSM_CR5", "DSM_CR6",
	"DSM_CR7", "DSM_CR8", "DSM_CR9", "DSM_CR10", "DSM_CR11", "DSM_CR12", "DSM_CR13",
	"DSM_CR14", "DSM_CR15", "DSM_CR16", "DSM_CR17",
	"DSM_REF0", "DSM_REF1", "DSM_REF2", "DSM_REF3", "DSM_DEM0", "DSM_DEM1",
	"DSM_BUF0", "DSM_BUF1", "DSM_BUF2", "DSM_BUF3", "DSM_CLK", "DSM_MISC",
	"DSM_OUT0", "DSM_OUT1",
	"PM_ACT_DEC", "PM_ACT_DSM", "PM_STBY_DEC", "PM_STBY_DSM", "PM_ACT_CLK",
	"PM_STBY_CLK", "PM_ACT_PUMP_CLK", "PM_STBY_PUMP_CLK",
	"RESET_CR4", "RESET_CR5", "PUMP_CR1",
	"ACLK_DIV", "ACLK_DIVH", "CPCLK_DIV", "CPCLK_DIVH",
}

// String returns the register's TRM name.
func (r Reg) String() string {
	if r < NumRegs {
		return regNames[r]
	}
	return "REG?"
}
