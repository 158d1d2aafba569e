// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_src

import (
	"github.com/nixomose/nixomosegotools/tools"
)

func Decompose(addr uint32) (drum uint32, block uint32, offset uint32) {
	drum = addr >> SMSA_DRUM_SHIFT
	block = (addr & 0xffff) >> SMSA_BLOCK_SHIFT
	offset = addr & SMSA_OFFSET_MASK
	return
}

func Compose(drum uint32, block uint32, offset uint32) uint32 {
	return (drum << SMSA_DRUM_SHIFT) | (block << SMSA_BLOCK_SHIFT) | (offset & SMSA_OFFSET_MASK)
}

type Smsa_geometry struct {
	/* the only thing that varies between disk arrays is how many drums there are. */
	drum_count uint32
}

func New_smsa_geometry(log *tools.Nixomosetools_logger, drum_count uint32) (tools.Ret, *Smsa_geometry) {
	if drum_count == 0 || drum_count > SMSA_MAX_DRUMS {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_ARGUMENT, "invalid drum count: ", drum_count,
			", must be between 1 and ", SMSA_MAX_DRUMS), nil
	}
	var g Smsa_geometry
	g.drum_count = drum_count
	return nil, &g
}

func (this *Smsa_geometry) Get_drum_count() uint32 {
	return this.drum_count
}

func (this *Smsa_geometry) Get_total_bytes() uint64 {
	return uint64(this.drum_count) * uint64(SMSA_DRUM_SIZE_IN_BYTES)
}

func (this *Smsa_geometry) Get_max_virtual_address() uint32 {
	return uint32(this.Get_total_bytes() - 1)
}

func (this *Smsa_geometry) Validate(addr uint32) bool {
	/* no logging here, the caller decides what an out of range address means. */
	return addr <= this.Get_max_virtual_address()
}
