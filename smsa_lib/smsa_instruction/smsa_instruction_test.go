// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeKnownWords(t *testing.T) {
	assert.Equal(t, uint32(0x00000000), Encode_instruction(SMSA_MOUNT, 0, 0))
	assert.Equal(t, uint32(0x04000000), Encode_instruction(SMSA_UNMOUNT, 0, 0))
	assert.Equal(t, uint32(0x0C400005), Encode_instruction(SMSA_SEEK_BLOCK, 1, 5))
	assert.Equal(t, uint32(0x17C000FF), Encode_instruction(SMSA_DISK_WRITE, 15, 255))
	assert.Equal(t, uint32(0x18C00000), Encode_instruction(SMSA_FORMAT_DRUM, 3, 0))
}

func TestEncodeMatchesPackingSequence(t *testing.T) {
	for opcode := uint32(0); opcode <= SMSA_MAX_OPCODE; opcode++ {
		for drum := uint32(0); drum < 16; drum++ {
			for _, block := range []uint32{0, 1, 127, 255} {
				var expected uint32 = opcode
				expected <<= 4
				expected |= drum
				expected <<= 22
				expected |= block
				assert.Equal(t, expected, Encode_instruction(opcode, drum, block))
			}
		}
	}
}

func TestDecodeUndoesEncode(t *testing.T) {
	var i = New_smsa_instruction(SMSA_DISK_READ, 9, 200)
	var back = Decode(i.Encode())
	assert.Equal(t, i, back)
	assert.Equal(t, SMSA_DISK_READ, back.Opcode)
	assert.Equal(t, uint32(9), back.Drum)
	assert.Equal(t, uint32(200), back.Block)
}

func TestEncodeDoesNotRangeCheck(t *testing.T) {
	/* a drum id wider than 4 bits runs into the opcode field. */
	assert.Equal(t, Encode_instruction(SMSA_SEEK_BLOCK, 0, 0), Encode_instruction(SMSA_SEEK_DRUM, 16, 0))
}

func TestOpcodeNames(t *testing.T) {
	assert.Equal(t, "SEEK_DRUM", Get_opcode_name(SMSA_SEEK_DRUM))
	assert.Equal(t, "UNKNOWN(42)", Get_opcode_name(42))
	assert.Equal(t, "DISK_READ drum: 2 block: 7", New_smsa_instruction(SMSA_DISK_READ, 2, 7).String())
}
