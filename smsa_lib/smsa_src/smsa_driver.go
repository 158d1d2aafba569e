// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

/* this is the smsa driver. it takes a flat virtual address space and turns reads and writes
   into the only things the disk array controller understands: seek to a drum, seek to a block,
	 read a block, write a block. everything is a whole block as far as the controller is concerned,
	 so anything that doesn't start or end on a block boundary has to be done read-modify-write so
	 we don't stomp on the bytes around it.

	 the virtual address is [drum:16][block:8][offset:8]. a transfer starts at the decomposed
	 (drum, block, offset), uses the offset only for the first block, and walks forward one block
	 at a time, rolling over to block zero of the next drum when it falls off the end of a drum.
	 if it falls off the end of the last drum before it's done, that's an error.

	 nothing here is atomic. if the controller fails halfway through, whatever was already copied
	 in or out for earlier blocks stays that way. there is no undo. */

package smsa_src

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/nixomose/nixomosegotools/tools"
	"github.com/nixomose/smsa_driver/smsa_lib/smsa_instruction"
	smsa_lib_interfaces "github.com/nixomose/smsa_driver/smsa_lib/smsa_interfaces"
)

type Smsa_driver_stats struct {
	Reads          uint64 // vread calls that completed
	Writes         uint64 // vwrite calls that completed
	Blocks_read    uint64 // disk reads issued, including the pre-reads for writes
	Blocks_written uint64
	Bytes_read     uint64
	Bytes_written  uint64
}

type Smsa_driver struct {
	log *tools.Nixomosetools_logger

	m_controller smsa_lib_interfaces.Smsa_controller_interface
	m_geometry   *Smsa_geometry

	/* the controller has one head and one cursor for the whole array, so only one of anything
	in the interface can happen at once. */
	interface_lock sync.Mutex

	m_mounted bool
	m_stats   Smsa_driver_stats
}

func New_Smsa_driver(l *tools.Nixomosetools_logger, controller smsa_lib_interfaces.Smsa_controller_interface,
	drum_count uint32) (tools.Ret, *Smsa_driver) {

	var d Smsa_driver
	d.log = l
	d.m_controller = controller

	var ret tools.Ret
	if ret, d.m_geometry = New_smsa_geometry(l, drum_count); ret != nil {
		return ret, nil
	}
	return nil, &d
}

func (this *Smsa_driver) Get_logger() *tools.Nixomosetools_logger {
	return this.log
}

func (this *Smsa_driver) Get_drum_count() uint32 {
	return this.m_geometry.Get_drum_count()
}

func (this *Smsa_driver) Get_max_virtual_address() uint32 {
	return this.m_geometry.Get_max_virtual_address()
}

func (this *Smsa_driver) Get_total_bytes() uint64 {
	return this.m_geometry.Get_total_bytes()
}

func (this *Smsa_driver) Is_mounted() bool {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()
	return this.m_mounted
}

func (this *Smsa_driver) Get_stats() Smsa_driver_stats {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()
	return this.m_stats
}

func (this *Smsa_driver) operation(opcode uint32, drum uint32, block uint32, data *[]byte) tools.Ret {
	/* everything that goes to the controller goes through here. */
	var instruction = smsa_instruction.New_smsa_instruction(opcode, drum, block)
	var ret = this.m_controller.Operation(instruction.Encode(), data)
	if ret != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "controller operation ",
			instruction.String(), " failed: ", ret.Get_errmsg())
	}
	return nil
}

/* * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * */

func (this *Smsa_driver) Vmount(format bool) tools.Ret {
	/* mount the array, and if asked, format every drum, which zeroes the whole thing. */
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()

	var ret tools.Ret
	if ret = this.operation(smsa_instruction.SMSA_MOUNT, 0, 0, nil); ret != nil {
		return ret
	}
	this.m_mounted = true
	this.log.Info("mounted smsa disk array with ", this.Get_drum_count(), " drums")

	if format == false {
		return nil
	}

	var drum uint32
	for drum = 0; drum < this.Get_drum_count(); drum++ {
		if ret = this.operation(smsa_instruction.SMSA_SEEK_DRUM, drum, 0, nil); ret != nil {
			return ret
		}
		if ret = this.operation(smsa_instruction.SMSA_FORMAT_DRUM, drum, 0, nil); ret != nil {
			return ret
		}
		this.log.Debug("formatted drum ", drum)
	}
	this.log.Info("formatted ", this.Get_drum_count(), " drums")
	return nil
}

func (this *Smsa_driver) Vunmount() tools.Ret {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()
	return this.vunmount_internal()
}

func (this *Smsa_driver) vunmount_internal() tools.Ret {
	if ret := this.operation(smsa_instruction.SMSA_UNMOUNT, 0, 0, nil); ret != nil {
		return ret
	}
	this.m_mounted = false
	this.log.Info("unmounted smsa disk array")
	return nil
}

func (this *Smsa_driver) Vunmount_and_dump(filename string) tools.Ret {
	/* read the entire array out to a file and then unmount. if the dump fails we don't unmount,
	so the caller can try again. */
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()

	var f, err = os.Create(filename)
	if err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "unable to create dump file ", filename, ", err: ", err)
	}

	var ret = this.vdump_internal(f)
	if err = f.Close(); err != nil && ret == nil {
		ret = tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to close dump file ", filename, ", err: ", err)
	}
	if ret != nil {
		return ret
	}
	this.log.Info("dumped ", this.Get_total_bytes(), " bytes to ", filename)
	return this.vunmount_internal()
}

func (this *Smsa_driver) Vdump(w io.Writer) tools.Ret {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()
	return this.vdump_internal(w)
}

func (this *Smsa_driver) vdump_internal(w io.Writer) tools.Ret {
	/* a drum at a time, so we don't need the whole array in memory. */
	var buf = make([]byte, SMSA_DRUM_SIZE_IN_BYTES)
	var drum uint32
	for drum = 0; drum < this.Get_drum_count(); drum++ {
		var ret = this.vread_internal(Compose(drum, 0, 0), SMSA_DRUM_SIZE_IN_BYTES, buf)
		if ret != nil {
			return ret
		}
		if _, err := w.Write(buf); err != nil {
			return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to write dump of drum ", drum, ", err: ", err)
		}
	}
	return nil
}

/* * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * */

func (this *Smsa_driver) check_transfer(addr uint32, length uint32, buf []byte) tools.Ret {
	/* everything we can reject without talking to the controller. */
	if this.m_geometry.Validate(addr) == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_OUT_OF_RANGE, "address ", addr,
			" is out of range, max virtual address is ", this.Get_max_virtual_address())
	}
	if uint64(len(buf)) < uint64(length) {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "transfer of ", length,
			" bytes at address ", addr, " but buffer only has ", len(buf), " bytes")
	}
	return nil
}

// this is a main entrypoint for reading from the disk array.

func (this *Smsa_driver) Vread(addr uint32, length uint32, buf []byte) tools.Ret {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()

	if ret := this.vread_internal(addr, length, buf); ret != nil {
		return ret
	}
	this.m_stats.Reads++
	this.m_stats.Bytes_read += uint64(length)
	return nil
}

func (this *Smsa_driver) vread_internal(addr uint32, length uint32, buf []byte) tools.Ret {
	if ret := this.check_transfer(addr, length, buf); ret != nil {
		return ret
	}
	this.log.Debug("vread addr: ", addr, " length: ", length)
	return this.transfer(addr, length, buf, this.read_block)
}

// this is a main entrypoint for writing to the disk array.

func (this *Smsa_driver) Vwrite(addr uint32, length uint32, buf []byte) tools.Ret {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()

	if ret := this.check_transfer(addr, length, buf); ret != nil {
		return ret
	}
	this.log.Debug("vwrite addr: ", addr, " length: ", length)
	if ret := this.transfer(addr, length, buf, this.write_block); ret != nil {
		return ret
	}
	this.m_stats.Writes++
	this.m_stats.Bytes_written += uint64(length)
	return nil
}

type block_handler func(drum uint32, block uint32, length uint32, offset uint32, first_block bool,
	bytes_done uint32, buf []byte) (tools.Ret, uint32)

func (this *Smsa_driver) transfer(addr uint32, length uint32, buf []byte, handle_block block_handler) tools.Ret {
	/* walk the blocks from the starting address until we've moved length bytes.
	   the drum seek only happens when we land on a new drum, every block gets its own block seek. */

	var drum, block, offset = Decompose(addr)
	var bytes_done uint32 = 0
	var first_block bool = true
	var drum_seeked bool = false

	for bytes_done < length {
		if block == SMSA_BLOCKS_PER_DRUM {
			drum++
			block = 0
			drum_seeked = false
		}
		if drum >= this.Get_drum_count() {
			return tools.ErrorWithCode(this.log, SMSA_ERROR_ARRAY_EXHAUSTED, "ran off the end of the disk array at drum ", drum,
				" transferring ", length, " bytes from address ", addr, ", only ", bytes_done, " bytes transferred")
		}

		if drum_seeked == false {
			if ret := this.operation(smsa_instruction.SMSA_SEEK_DRUM, drum, 0, nil); ret != nil {
				return ret
			}
			drum_seeked = true
		}

		var ret tools.Ret
		if ret, bytes_done = handle_block(drum, block, length, offset, first_block, bytes_done, buf); ret != nil {
			return ret
		}
		first_block = false
		block++
	}
	return nil
}

func (this *Smsa_driver) read_block(drum uint32, block uint32, length uint32, offset uint32, first_block bool,
	bytes_done uint32, buf []byte) (tools.Ret, uint32) {

	var scratch = New_block_buffer()
	var data = []byte(scratch)

	if ret := this.operation(smsa_instruction.SMSA_SEEK_BLOCK, drum, block, nil); ret != nil {
		return ret, bytes_done
	}
	if ret := this.operation(smsa_instruction.SMSA_DISK_READ, drum, block, &data); ret != nil {
		return ret, bytes_done
	}
	this.m_stats.Blocks_read++
	return nil, Copy_into_caller(length, offset, first_block, bytes_done, scratch, buf)
}

func (this *Smsa_driver) write_block(drum uint32, block uint32, length uint32, offset uint32, first_block bool,
	bytes_done uint32, buf []byte) (tools.Ret, uint32) {
	/* read the whole block in first, since we might only be writing part of it, then seek back,
	   because the read moved the head to the next block, then lay our bytes over it and write it back. */

	var scratch = New_block_buffer()
	var data = []byte(scratch)

	if ret := this.operation(smsa_instruction.SMSA_SEEK_BLOCK, drum, block, nil); ret != nil {
		return ret, bytes_done
	}
	if ret := this.operation(smsa_instruction.SMSA_DISK_READ, drum, block, &data); ret != nil {
		return ret, bytes_done
	}
	this.m_stats.Blocks_read++

	if ret := this.operation(smsa_instruction.SMSA_SEEK_BLOCK, drum, block, nil); ret != nil {
		return ret, bytes_done
	}

	var new_bytes_done = Copy_from_caller(length, offset, first_block, bytes_done, buf, scratch)

	if ret := this.operation(smsa_instruction.SMSA_DISK_WRITE, drum, block, &data); ret != nil {
		return ret, bytes_done
	}
	this.m_stats.Blocks_written++
	return nil, new_bytes_done
}

/* * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * */

func (this *Smsa_driver) Diag_dump_block(drum uint32, block uint32) {
	var buf = make([]byte, SMSA_BLOCK_SIZE)
	if ret := this.Vread(Compose(drum, block, 0), SMSA_BLOCK_SIZE, buf); ret != nil {
		fmt.Println(ret.Get_errmsg())
		return
	}
	fmt.Println("drum: ", drum, " block: ", block)
	fmt.Print(tools.Dump(buf))
}

func (this *Smsa_driver) Print() {
	var stats = this.Get_stats()
	fmt.Println("drums:          ", this.Get_drum_count())
	fmt.Println("max address:    ", this.Get_max_virtual_address())
	fmt.Println("mounted:        ", this.Is_mounted())
	fmt.Println("reads:          ", stats.Reads, " bytes: ", stats.Bytes_read)
	fmt.Println("writes:         ", stats.Writes, " bytes: ", stats.Bytes_written)
	fmt.Println("blocks read:    ", stats.Blocks_read)
	fmt.Println("blocks written: ", stats.Blocks_written)
}
