// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

/* this is the header for block 0 of a drum image file, the superblock as it were. */

// package name must match directory name
package smsa_src

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/nixomose/nixomosegotools/tools"
)

const SMSA_DRUM_IMAGE_MAGIC uint64 = 0x534d534144524d31 // SMSADRM1

/* the header takes up the first page of the image so the drums after it stay page aligned for directio. */
const SMSA_IMAGE_HEADER_SIZE uint32 = 4096

type Smsa_header struct {
	// must be capitalized or we can't deserialize because it's not exported...
	M_magic           uint64
	M_block_size      uint32 // bytes in a block, always SMSA_BLOCK_SIZE, but we check so we don't read some other geometry
	M_blocks_per_drum uint32
	M_drum_count      uint32 // how many drums follow the header
	M_data_start      uint32 // byte offset of drum 0 in the image

	// smsa image header format
	/*        magic                    block size  | blocks/drum
	00000000  53 4d 53 41 44 52 4d 31 | 00 00 01 00 00 00 01 00  |SMSADRM1........|
	          drum count  data start  | md5 of the first 24 bytes
	00000010  00 00 00 10 00 00 10 00 | .. .. .. .. .. .. .. ..  |................|
	*/
}

func New_smsa_header(drum_count uint32) Smsa_header {
	var h Smsa_header
	h.M_magic = SMSA_DRUM_IMAGE_MAGIC
	h.M_block_size = SMSA_BLOCK_SIZE
	h.M_blocks_per_drum = SMSA_BLOCKS_PER_DRUM
	h.M_drum_count = drum_count
	h.M_data_start = SMSA_IMAGE_HEADER_SIZE
	return h
}

func (this *Smsa_header) Serialized_size() uint32 {
	return uint32(binary.Size(this)) + md5.Size
}

func (this *Smsa_header) Serialize(log *tools.Nixomosetools_logger) (tools.Ret, *[]byte) {
	/* serialize this header into a byte array with the md5 of it on the end, which just goes to block zero, really */

	var bb *bytes.Buffer = bytes.NewBuffer(make([]byte, 0, this.Serialized_size()))
	var err error = binary.Write(bb, binary.BigEndian, this) // this works because there's nothing but actual data fields.
	if err != nil {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "unable to serialize smsa header: ", err), nil
	}

	var m5 = md5.Sum(bb.Bytes())
	var bret []byte = append(bb.Bytes(), m5[:]...)
	return nil, &bret
}

func (this *Smsa_header) Deserialize(log *tools.Nixomosetools_logger, bs *[]byte) tools.Ret {
	/* deserialize incoming data into this object's fields.
	an image that was never initted is probably all zeroes, but could be junk, either way the
	checksum or the magic will be wrong so we catch it here. */

	var header_len = binary.Size(this)
	if len(*bs) < header_len+md5.Size {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "smsa header is too short, got ", len(*bs),
			" bytes, need ", header_len+md5.Size)
	}

	var m5 = md5.Sum((*bs)[0:header_len])
	if bytes.Equal(m5[:], (*bs)[header_len:header_len+md5.Size]) == false {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "smsa header checksum mismatch")
	}

	var bb *bytes.Buffer = bytes.NewBuffer((*bs)[0:header_len])
	var err = binary.Read(bb, binary.BigEndian, this)
	if err != nil {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "unable to deserialize smsa header: ", err)
	}

	if this.M_magic != SMSA_DRUM_IMAGE_MAGIC {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "smsa header has bad magic: ", fmt.Sprintf("0x%016x", this.M_magic))
	}
	return nil
}

func (this *Smsa_header) Verify_geometry(log *tools.Nixomosetools_logger, drum_count uint32) tools.Ret {
	/* make sure what's on disk is what the caller thinks it is. */
	if this.M_block_size != SMSA_BLOCK_SIZE || this.M_blocks_per_drum != SMSA_BLOCKS_PER_DRUM {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "image has block size ", this.M_block_size,
			" and ", this.M_blocks_per_drum, " blocks per drum, expected ", SMSA_BLOCK_SIZE, " and ", SMSA_BLOCKS_PER_DRUM)
	}
	if this.M_drum_count != drum_count {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "image has ", this.M_drum_count,
			" drums, expected ", drum_count)
	}
	if this.M_data_start != SMSA_IMAGE_HEADER_SIZE {
		return tools.ErrorWithCode(log, SMSA_ERROR_INVALID_HEADER, "image data starts at ", this.M_data_start,
			", expected ", SMSA_IMAGE_HEADER_SIZE)
	}
	return nil
}

func (this *Smsa_header) Dump(log *tools.Nixomosetools_logger) {
	log.Info("magic:          ", fmt.Sprintf("0x%016x", this.M_magic))
	log.Info("block size:     ", this.M_block_size)
	log.Info("blocks/drum:    ", this.M_blocks_per_drum)
	log.Info("drum count:     ", this.M_drum_count)
	log.Info("data start:     ", this.M_data_start)
}
