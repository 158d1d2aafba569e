// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

// Package smsa_src name must match directory name
package smsa_src

import (
	"syscall"

	"github.com/nixomose/smsa_driver/smsa_lib/smsa_instruction"
)

/* the disk array geometry. block size and blocks per drum are baked into the virtual address
layout [drum:16][block:8][offset:8], the number of drums is picked by whoever builds the array,
but it can't be more than the instruction word has room for. */

const SMSA_BLOCK_SIZE uint32 = 256
const SMSA_BLOCKS_PER_DRUM uint32 = 256
const SMSA_DRUM_SIZE_IN_BYTES uint32 = SMSA_BLOCK_SIZE * SMSA_BLOCKS_PER_DRUM

const SMSA_MAX_DRUMS uint32 = 1 << smsa_instruction.SMSA_DRUM_ID_BITS
const SMSA_DEFAULT_DRUM_COUNT uint32 = SMSA_MAX_DRUMS

const SMSA_DRUM_SHIFT uint32 = 16
const SMSA_BLOCK_SHIFT uint32 = 8
const SMSA_OFFSET_MASK uint32 = 0xff

/* error codes in the returned tools.Ret */
const SMSA_ERROR_OUT_OF_RANGE int = int(syscall.ERANGE)
const SMSA_ERROR_CONTROLLER_FAILURE int = int(syscall.EIO)
const SMSA_ERROR_ARRAY_EXHAUSTED int = int(syscall.ENOSPC)
const SMSA_ERROR_INVALID_ARGUMENT int = int(syscall.EINVAL)
const SMSA_ERROR_DEVICE_STATE int = int(syscall.ENODEV)

const SMSA_ERROR_INVALID_HEADER int = 1001
const SMSA_ERROR_BAD_DRUM int = 1002
const SMSA_ERROR_BAD_BLOCK int = 1003
const SMSA_ERROR_BAD_OPCODE int = 1004
