// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package main

import (
	"bytes"
	"math/rand"

	"github.com/nixomose/nixomosegotools/tools"
	"github.com/nixomose/smsa_driver/smsa_lib/smsa_src"
)

type smsa_test_lib struct {
	log *tools.Nixomosetools_logger
}

func New_smsa_test_lib(log *tools.Nixomosetools_logger) smsa_test_lib {
	var smsa_test smsa_test_lib
	smsa_test.log = log
	return smsa_test
}

func binstringstart(start int, length uint32) []byte {
	var out []byte = make([]byte, length)
	for i := 0; i < int(length); i++ {
		out[i] = byte((i + start) % 256)
	}
	return out
}

func (this *smsa_test_lib) write_and_check(d *smsa_src.Smsa_driver, addr uint32, data []byte) tools.Ret {
	var length = uint32(len(data))
	this.log.Debug("writing ", length, " bytes at ", addr)
	if ret := d.Vwrite(addr, length, data); ret != nil {
		return ret
	}
	var back = make([]byte, length)
	if ret := d.Vread(addr, length, back); ret != nil {
		return ret
	}
	if bytes.Equal(data, back) == false {
		return tools.Error(this.log, "data after write and read doesn't match at address: ", addr, " length: ", length)
	}
	return nil
}

func (this *smsa_test_lib) Smsa_test_round_trip(d *smsa_src.Smsa_driver) tools.Ret {
	/* the simplest thing, a few bytes somewhere in block 1 */
	var ret = this.write_and_check(d, 0x000100, []byte{1, 2, 3, 4})
	if ret != nil {
		return ret
	}
	return this.write_and_check(d, 0, binstringstart(7, smsa_src.SMSA_BLOCK_SIZE))
}

func (this *smsa_test_lib) Smsa_test_partial_block(d *smsa_src.Smsa_driver) tools.Ret {
	/* fill a block, then write into the middle of it and make sure the edges survived. */
	var addr = smsa_src.Compose(0, 9, 0)
	var ret tools.Ret
	if ret = this.write_and_check(d, addr, binstringstart(0, smsa_src.SMSA_BLOCK_SIZE)); ret != nil {
		return ret
	}
	var middle = []byte{0xde, 0xad, 0xbe, 0xef}
	if ret = d.Vwrite(addr+100, uint32(len(middle)), middle); ret != nil {
		return ret
	}
	var expected = binstringstart(0, smsa_src.SMSA_BLOCK_SIZE)
	copy(expected[100:], middle)

	var back = make([]byte, smsa_src.SMSA_BLOCK_SIZE)
	if ret = d.Vread(addr, smsa_src.SMSA_BLOCK_SIZE, back); ret != nil {
		return ret
	}
	if bytes.Equal(expected, back) == false {
		return tools.Error(this.log, "partial block write clobbered the rest of block 9")
	}
	d.Diag_dump_block(0, 9)
	return nil
}

func (this *smsa_test_lib) Smsa_test_block_boundary(d *smsa_src.Smsa_driver) tools.Ret {
	/* two bytes straddling block 3 and 4 */
	return this.write_and_check(d, smsa_src.Compose(0, 3, 255), []byte{0x55, 0xaa})
}

func (this *smsa_test_lib) Smsa_test_drum_rollover(d *smsa_src.Smsa_driver) tools.Ret {
	if d.Get_drum_count() < 2 {
		this.log.Info("only one drum, skipping drum rollover test")
		return nil
	}
	return this.write_and_check(d, smsa_src.Compose(0, 255, 128), binstringstart(3, 512))
}

func (this *smsa_test_lib) Smsa_test_bounds(d *smsa_src.Smsa_driver) tools.Ret {
	var buf = make([]byte, 16)
	var ret = d.Vread(d.Get_max_virtual_address()+1, 16, buf)
	if ret == nil || ret.Get_errcode() != smsa_src.SMSA_ERROR_OUT_OF_RANGE {
		return tools.Error(this.log, "read past the end of the array wasn't rejected")
	}
	ret = d.Vwrite(d.Get_max_virtual_address()-7, 16, buf)
	if ret == nil || ret.Get_errcode() != smsa_src.SMSA_ERROR_ARRAY_EXHAUSTED {
		return tools.Error(this.log, "write running off the last drum wasn't rejected")
	}
	return nil
}

func (this *smsa_test_lib) Smsa_test_random(d *smsa_src.Smsa_driver, count int) tools.Ret {
	/* random writes all over the array, checked against a copy we keep on the side. */
	var total = uint32(d.Get_total_bytes())
	var shadow = make([]byte, total)
	if ret := d.Vread(0, total, shadow); ret != nil {
		return ret
	}

	for i := 0; i < count; i++ {
		var addr = rand.Uint32() % total
		var length = rand.Uint32()%(smsa_src.SMSA_BLOCK_SIZE*3) + 1
		if addr+length > total {
			length = total - addr
		}
		var data = binstringstart(rand.Intn(256), length)
		if ret := d.Vwrite(addr, length, data); ret != nil {
			return ret
		}
		copy(shadow[addr:], data)
	}

	var back = make([]byte, total)
	if ret := d.Vread(0, total, back); ret != nil {
		return ret
	}
	if bytes.Equal(shadow, back) == false {
		return tools.Error(this.log, "array contents don't match after ", count, " random writes")
	}
	return nil
}

func (this *smsa_test_lib) Run_all(d *smsa_src.Smsa_driver) tools.Ret {
	var tests = []struct {
		name string
		fn   func(*smsa_src.Smsa_driver) tools.Ret
	}{
		{"round trip", this.Smsa_test_round_trip},
		{"partial block", this.Smsa_test_partial_block},
		{"block boundary", this.Smsa_test_block_boundary},
		{"drum rollover", this.Smsa_test_drum_rollover},
		{"bounds", this.Smsa_test_bounds},
		{"random", func(d *smsa_src.Smsa_driver) tools.Ret { return this.Smsa_test_random(d, 1000) }},
	}
	for _, t := range tests {
		this.log.Info("running ", t.name)
		if ret := t.fn(d); ret != nil {
			this.log.Error(t.name, " failed: ", ret.Get_errmsg())
			return ret
		}
	}
	this.log.Info("all ", len(tests), " tests passed")
	return nil
}
