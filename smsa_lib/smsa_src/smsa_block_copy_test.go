// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_src

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyIntoCallerHonorsFirstBlockOffset(t *testing.T) {
	var block = Smsa_block_buffer(make_pattern(0, SMSA_BLOCK_SIZE))
	var dest = make([]byte, 10)

	var done = Copy_into_caller(10, 250, true, 0, block, dest)
	assert.Equal(t, uint32(6), done)
	assert.Equal(t, []byte{250, 251, 252, 253, 254, 255, 0, 0, 0, 0}, dest)

	/* the next block always starts at zero, offset or not. */
	done = Copy_into_caller(10, 250, false, done, block, dest)
	assert.Equal(t, uint32(10), done)
	assert.Equal(t, []byte{250, 251, 252, 253, 254, 255, 0, 1, 2, 3}, dest)
}

func TestCopyIntoCallerStopsAtLength(t *testing.T) {
	var block = Smsa_block_buffer(make_pattern(7, SMSA_BLOCK_SIZE))
	var dest = make([]byte, 3)
	assert.Equal(t, uint32(3), Copy_into_caller(3, 0, true, 0, block, dest))
	assert.Equal(t, []byte{7, 8, 9}, dest)

	/* nothing left to do, nothing moves. */
	assert.Equal(t, uint32(3), Copy_into_caller(3, 0, false, 3, block, dest))
	assert.Equal(t, []byte{7, 8, 9}, dest)
}

func TestCopyIntoCallerFillsWholeBlock(t *testing.T) {
	var block = Smsa_block_buffer(make_pattern(1, SMSA_BLOCK_SIZE))
	var dest = make([]byte, 600)
	var done = Copy_into_caller(600, 0, false, 100, block, dest)
	assert.Equal(t, uint32(100+SMSA_BLOCK_SIZE), done)
	assert.Equal(t, []byte(block), dest[100:100+SMSA_BLOCK_SIZE])
	assert.Equal(t, make([]byte, 100), dest[0:100])
}

func TestCopyFromCallerPreservesRestOfBlock(t *testing.T) {
	var block = Smsa_block_buffer(fill(0xaa, SMSA_BLOCK_SIZE))
	var src = []byte{1, 2, 3, 4}

	var done = Copy_from_caller(4, 10, true, 0, src, block)
	assert.Equal(t, uint32(4), done)
	assert.Equal(t, fill(0xaa, 10), []byte(block[0:10]))
	assert.Equal(t, src, []byte(block[10:14]))
	assert.Equal(t, fill(0xaa, SMSA_BLOCK_SIZE-14), []byte(block[14:]))
}

func TestCopyFromCallerSpansBlocks(t *testing.T) {
	var src = []byte{9, 8}
	var first = Smsa_block_buffer(fill(0, SMSA_BLOCK_SIZE))
	var second = Smsa_block_buffer(fill(0, SMSA_BLOCK_SIZE))

	var done = Copy_from_caller(2, SMSA_BLOCK_SIZE-1, true, 0, src, first)
	assert.Equal(t, uint32(1), done)
	assert.Equal(t, byte(9), first[SMSA_BLOCK_SIZE-1])

	done = Copy_from_caller(2, SMSA_BLOCK_SIZE-1, false, done, src, second)
	assert.Equal(t, uint32(2), done)
	assert.Equal(t, byte(8), second[0])
	assert.Equal(t, fill(0, SMSA_BLOCK_SIZE-1), []byte(second[1:]))
}

func TestNewBlockBufferIsOneBlock(t *testing.T) {
	assert.Len(t, New_block_buffer(), int(SMSA_BLOCK_SIZE))
}
