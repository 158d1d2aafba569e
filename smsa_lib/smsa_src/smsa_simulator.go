// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

/* this is the disk array controller simulator.
   it sits between the driver and the drum store the same way a real controller would sit between
	 a driver and the platters. it decodes instruction words and keeps a cursor: which drum is
	 selected and which block the head is over. reads and writes happen wherever the head is, not
	 wherever the instruction says, and they move the head forward one block when they're done.
	 that's the part that bites you if you read a block and then write it without seeking back. */

// package name must match directory name
package smsa_src

import (
	"sync"

	"github.com/nixomose/nixomosegotools/tools"
	"github.com/nixomose/smsa_driver/smsa_lib/smsa_instruction"
	smsa_lib_interfaces "github.com/nixomose/smsa_driver/smsa_lib/smsa_interfaces"
)

type Smsa_simulator_stats struct {
	Ops    [smsa_instruction.SMSA_MAX_OPCODE + 1]uint64 // successful operations by opcode
	Failed uint64
}

func (this *Smsa_simulator_stats) Total() uint64 {
	var total uint64 = this.Failed
	for _, n := range this.Ops {
		total += n
	}
	return total
}

type Smsa_simulator struct {
	interface_lock sync.Mutex
	log            *tools.Nixomosetools_logger

	m_storage smsa_lib_interfaces.Smsa_drum_store_interface

	m_mounted      bool
	m_drum_seeked  bool
	m_current_drum uint32
	m_head         uint32 // the block the head is over in the current drum

	m_stats Smsa_simulator_stats
}

// verify that the simulator implements the controller interface
var _ smsa_lib_interfaces.Smsa_controller_interface = &Smsa_simulator{}
var _ smsa_lib_interfaces.Smsa_controller_interface = (*Smsa_simulator)(nil)

func New_Smsa_simulator(l *tools.Nixomosetools_logger, storage smsa_lib_interfaces.Smsa_drum_store_interface) *Smsa_simulator {
	/* the store is owned by whoever made it, they init it and start it up and shut it down.
	we just read and write blocks in it. */
	var s Smsa_simulator
	s.log = l
	s.m_storage = storage
	return &s
}

func (this *Smsa_simulator) Get_logger() *tools.Nixomosetools_logger {
	return this.log
}

func (this *Smsa_simulator) Get_stats() Smsa_simulator_stats {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()
	return this.m_stats
}

func (this *Smsa_simulator) Is_mounted() bool {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()
	return this.m_mounted
}

func (this *Smsa_simulator) Operation(instruction uint32, block *[]byte) tools.Ret {
	this.interface_lock.Lock()
	defer this.interface_lock.Unlock()

	var op = smsa_instruction.Decode(instruction)
	var ret = this.execute(op, block)
	if ret != nil {
		this.m_stats.Failed++
		return ret
	}
	this.m_stats.Ops[op.Opcode]++
	return nil
}

func (this *Smsa_simulator) execute(op smsa_instruction.Smsa_instruction, block *[]byte) tools.Ret {
	if op.Opcode > smsa_instruction.SMSA_MAX_OPCODE {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_OPCODE, "controller received unknown opcode: ", op.Opcode)
	}

	if op.Opcode == smsa_instruction.SMSA_MOUNT {
		return this.mount()
	}
	if this.m_mounted == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "controller received ", op.String(),
			" but the disk array is not mounted")
	}

	switch op.Opcode {
	case smsa_instruction.SMSA_UNMOUNT:
		return this.unmount()
	case smsa_instruction.SMSA_SEEK_DRUM:
		return this.seek_drum(op.Drum)
	case smsa_instruction.SMSA_SEEK_BLOCK:
		return this.seek_block(op.Block)
	case smsa_instruction.SMSA_DISK_READ:
		return this.disk_read(block)
	case smsa_instruction.SMSA_DISK_WRITE:
		return this.disk_write(block)
	case smsa_instruction.SMSA_FORMAT_DRUM:
		return this.format_drum()
	}
	return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_OPCODE, "controller can't handle opcode: ", op.Opcode)
}

func (this *Smsa_simulator) mount() tools.Ret {
	if this.m_mounted {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "disk array is already mounted")
	}
	this.m_mounted = true
	this.m_drum_seeked = false
	this.m_current_drum = 0
	this.m_head = 0
	this.log.Debug("controller mounted disk array")
	return nil
}

func (this *Smsa_simulator) unmount() tools.Ret {
	this.m_mounted = false
	this.m_drum_seeked = false
	this.log.Debug("controller unmounted disk array")
	return nil
}

func (this *Smsa_simulator) seek_drum(drum uint32) tools.Ret {
	if drum >= this.m_storage.Get_drum_count() {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_DRUM, "seek to drum ", drum,
			" but there are only ", this.m_storage.Get_drum_count(), " drums")
	}
	this.m_current_drum = drum
	this.m_drum_seeked = true
	this.m_head = 0
	return nil
}

func (this *Smsa_simulator) seek_block(block uint32) tools.Ret {
	if this.m_drum_seeked == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "seek to block ", block, " with no drum selected")
	}
	if block >= SMSA_BLOCKS_PER_DRUM {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_BLOCK, "seek to block ", block,
			" but there are only ", SMSA_BLOCKS_PER_DRUM, " blocks per drum")
	}
	this.m_head = block
	return nil
}

func (this *Smsa_simulator) check_head(what string, block *[]byte) tools.Ret {
	if this.m_drum_seeked == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, what, " with no drum selected")
	}
	if this.m_head >= SMSA_BLOCKS_PER_DRUM {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_BLOCK, what, " past the end of drum ", this.m_current_drum)
	}
	if block == nil || uint32(len(*block)) < SMSA_BLOCK_SIZE {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, what, " needs a buffer of at least ",
			SMSA_BLOCK_SIZE, " bytes")
	}
	return nil
}

func (this *Smsa_simulator) disk_read(block *[]byte) tools.Ret {
	if ret := this.check_head("disk read", block); ret != nil {
		return ret
	}
	var ret, data = this.m_storage.Load_block(this.m_current_drum, this.m_head)
	if ret != nil {
		return ret
	}
	/* copy into the caller's buffer, don't hand them ours. */
	copy((*block)[0:SMSA_BLOCK_SIZE], *data)
	this.m_head++
	return nil
}

func (this *Smsa_simulator) disk_write(block *[]byte) tools.Ret {
	if ret := this.check_head("disk write", block); ret != nil {
		return ret
	}
	var data = make([]byte, SMSA_BLOCK_SIZE)
	copy(data, (*block)[0:SMSA_BLOCK_SIZE])
	if ret := this.m_storage.Store_block(this.m_current_drum, this.m_head, &data); ret != nil {
		return ret
	}
	this.m_head++
	return nil
}

func (this *Smsa_simulator) format_drum() tools.Ret {
	if this.m_drum_seeked == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "format drum with no drum selected")
	}
	if ret := this.m_storage.Format_drum(this.m_current_drum); ret != nil {
		return ret
	}
	this.m_head = 0
	return nil
}
