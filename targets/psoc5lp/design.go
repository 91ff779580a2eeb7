//go:build tinygo && psoc5lp

package main

import (
	"runtime/volatile"
	"unsafe"

	"dsadc/config"
	"dsadc/core"
)

// Manufacturing configuration row holding the decimator gain trims, in
// core.TrimFromRow order.
const flshidDSMTrim = 0x4000462A

// readTrim loads the factory gain trims.
func readTrim() core.TrimTable {
	var row [8]byte
	for i := range row {
		row[i] = (*volatile.Register8)(unsafe.Pointer(uintptr(flshidDSMTrim + i))).Get()
	}
	return core.TrimFromRow(row)
}

// Register images come from the CFG1 block of the adc.h that PSoC Creator
// generates for a placed design. They depend on the clock tree and the
// fitter result, so none are built in; main checks them with
// core.CheckRegisterImages and refuses to start while they are empty.
var (
	staticRegs  core.StaticRegs
	profileRegs [1]core.ProfileRegs
)

// designProfiles returns the configurations placed in this design: the
// 20 bit differential continuous profile only.
func designProfiles() []core.Profile {
	profiles := config.DefaultProfiles()[:len(profileRegs)]
	for i := range profiles {
		profiles[i].Regs = profileRegs[i]
	}
	return profiles
}
