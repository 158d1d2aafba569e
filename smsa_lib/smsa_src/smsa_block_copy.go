// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_src

/* moving bytes between the caller's buffer and one block's scratch buffer.
   the offset only matters for the first block of a transfer, every block after that is
	 used from position zero. the running count of bytes moved is passed in and the new count
	 is handed back, nobody holds a pointer to it. */

type Smsa_block_buffer []byte

func New_block_buffer() Smsa_block_buffer {
	return make(Smsa_block_buffer, SMSA_BLOCK_SIZE)
}

func block_span(length uint32, offset uint32, first_block bool, bytes_done uint32, block_len uint32) (start uint32, count uint32) {
	if first_block {
		start = offset
	}
	if start >= block_len || bytes_done >= length {
		return start, 0
	}
	count = block_len - start
	if remaining := length - bytes_done; remaining < count {
		count = remaining
	}
	return start, count
}

func Copy_into_caller(length uint32, offset uint32, first_block bool, bytes_done uint32,
	block_buf Smsa_block_buffer, dest []byte) uint32 {
	var start, count = block_span(length, offset, first_block, bytes_done, uint32(len(block_buf)))
	copy(dest[bytes_done:bytes_done+count], block_buf[start:start+count])
	return bytes_done + count
}

func Copy_from_caller(length uint32, offset uint32, first_block bool, bytes_done uint32,
	src []byte, block_buf Smsa_block_buffer) uint32 {
	/* block_buf must already hold the block's current contents, we only overwrite our part of it. */
	var start, count = block_span(length, offset, first_block, bytes_done, uint32(len(block_buf)))
	copy(block_buf[start:start+count], src[bytes_done:bytes_done+count])
	return bytes_done + count
}
