// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_instruction

import (
	"fmt"
)

/* the controller opcodes. the numbering is part of the wire format, don't reorder these. */
const (
	SMSA_MOUNT       uint32 = 0
	SMSA_UNMOUNT     uint32 = 1
	SMSA_SEEK_DRUM   uint32 = 2
	SMSA_SEEK_BLOCK  uint32 = 3
	SMSA_DISK_READ   uint32 = 4
	SMSA_DISK_WRITE  uint32 = 5
	SMSA_FORMAT_DRUM uint32 = 6

	SMSA_MAX_OPCODE uint32 = SMSA_FORMAT_DRUM
)

/* the instruction word layout, opcode on top, then 4 bits of drum id, then 22 bits of block id.
   bits 31..26 opcode
	 bits 25..22 drum id
	 bits 21..0  block id */
const SMSA_DRUM_ID_BITS uint32 = 4
const SMSA_BLOCK_ID_BITS uint32 = 22

const SMSA_DRUM_ID_MASK uint32 = (1 << SMSA_DRUM_ID_BITS) - 1
const SMSA_BLOCK_ID_MASK uint32 = (1 << SMSA_BLOCK_ID_BITS) - 1

var opcode_names = []string{"MOUNT", "UNMOUNT", "SEEK_DRUM", "SEEK_BLOCK", "DISK_READ", "DISK_WRITE", "FORMAT_DRUM"}

type Smsa_instruction struct {
	/* this is the unpacked form of an instruction word. the driver builds these and encodes them,
	the controller decodes them back. there's no identity here beyond the three fields. */
	Opcode uint32
	Drum   uint32
	Block  uint32
}

func New_smsa_instruction(opcode uint32, drum uint32, block uint32) Smsa_instruction {
	var i Smsa_instruction
	i.Opcode = opcode
	i.Drum = drum
	i.Block = block
	return i
}

func (this Smsa_instruction) Encode() uint32 {
	/* pack into the controller's instruction word.
	   no range checking here, that's the address translator's job, so a drum id that doesn't
		 fit in 4 bits will bleed into the opcode. the controller has to live with what it gets. */
	var instruction uint32 = this.Opcode
	instruction <<= SMSA_DRUM_ID_BITS // make room for the drum id
	instruction |= this.Drum
	instruction <<= SMSA_BLOCK_ID_BITS // make room for the block id
	instruction |= this.Block
	return instruction
}

func Decode(instruction uint32) Smsa_instruction {
	/* the controller side of encode. */
	var i Smsa_instruction
	i.Block = instruction & SMSA_BLOCK_ID_MASK
	i.Drum = (instruction >> SMSA_BLOCK_ID_BITS) & SMSA_DRUM_ID_MASK
	i.Opcode = instruction >> (SMSA_BLOCK_ID_BITS + SMSA_DRUM_ID_BITS)
	return i
}

func Encode_instruction(opcode uint32, drum uint32, block uint32) uint32 {
	return New_smsa_instruction(opcode, drum, block).Encode()
}

func Get_opcode_name(opcode uint32) string {
	if opcode > SMSA_MAX_OPCODE {
		return fmt.Sprintf("UNKNOWN(%d)", opcode)
	}
	return opcode_names[opcode]
}

func (this Smsa_instruction) String() string {
	return fmt.Sprintf("%s drum: %d block: %d", Get_opcode_name(this.Opcode), this.Drum, this.Block)
}

func (this Smsa_instruction) Dump() string {
	return fmt.Sprintf("0x%08x [%s]", this.Encode(), this.String())
}
