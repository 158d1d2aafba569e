// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_src

import (
	"github.com/nixomose/nixomosegotools/tools"
	smsa_lib_interfaces "github.com/nixomose/smsa_driver/smsa_lib/smsa_interfaces"
)

type Memory_store struct {
	log        *tools.Nixomosetools_logger
	started    bool
	drum_count uint32
	storage    map[uint32][]byte // keyed by drum * blocks per drum + block, never written blocks read as zeroes
}

// verify that memory_store implements the drum store
var _ smsa_lib_interfaces.Smsa_drum_store_interface = &Memory_store{}
var _ smsa_lib_interfaces.Smsa_drum_store_interface = (*Memory_store)(nil)

func New_memory_store(l *tools.Nixomosetools_logger, drum_count uint32) *Memory_store {
	var store Memory_store
	store.log = l
	store.drum_count = drum_count
	return &store
}

func (this *Memory_store) check_limits(drum uint32, block uint32) tools.Ret {
	if drum >= this.drum_count {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_DRUM, "memory store access to drum ", drum,
			" but there are only ", this.drum_count, " drums")
	}
	if block >= SMSA_BLOCKS_PER_DRUM {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_BLOCK, "memory store access to block ", block,
			" but there are only ", SMSA_BLOCKS_PER_DRUM, " blocks per drum")
	}
	if this.started == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "memory store has not been started")
	}
	return nil
}

func block_key(drum uint32, block uint32) uint32 {
	return drum*SMSA_BLOCKS_PER_DRUM + block
}

func (this *Memory_store) Load_block(drum uint32, block uint32) (tools.Ret, *[]byte) {
	if ret := this.check_limits(drum, block); ret != nil {
		return ret, nil
	}
	var val, ok = this.storage[block_key(drum, block)]
	if ok == false {
		var r = make([]byte, SMSA_BLOCK_SIZE)
		return nil, &r
	}
	var r = make([]byte, SMSA_BLOCK_SIZE)
	copy(r, val)
	return nil, &r
}

func (this *Memory_store) Store_block(drum uint32, block uint32, data *[]byte) tools.Ret {
	if ret := this.check_limits(drum, block); ret != nil {
		return ret
	}
	if data == nil || uint32(len(*data)) != SMSA_BLOCK_SIZE {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "memory store block write must be exactly ",
			SMSA_BLOCK_SIZE, " bytes")
	}
	var val = make([]byte, SMSA_BLOCK_SIZE)
	copy(val, *data)
	this.storage[block_key(drum, block)] = val
	return nil
}

func (this *Memory_store) Format_drum(drum uint32) tools.Ret {
	if ret := this.check_limits(drum, 0); ret != nil {
		return ret
	}
	var block uint32
	for block = 0; block < SMSA_BLOCKS_PER_DRUM; block++ {
		delete(this.storage, block_key(drum, block))
	}
	this.log.Debug("memory store formatted drum: ", drum)
	return nil
}

func (this *Memory_store) Is_backing_store_uninitialized() (tools.Ret, bool) {
	/* there's nothing to persist so there's nothing to find. it's uninitialized until init is called. */
	return nil, this.storage == nil
}

func (this *Memory_store) Startup(force bool) tools.Ret {
	if this.started != false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "memory store has already been started up, not starting again")
	}
	if this.storage == nil {
		/* since we don't persist data between runs, we have to be able to start up without initting every time */
		this.storage = make(map[uint32][]byte)
	}
	this.started = true
	return nil
}

func (this *Memory_store) Shutdown() tools.Ret {
	if this.started == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "memory store hasn't been started, can't be shut down")
	}
	/* we keep the contents, a shutdown and startup is like unplugging and replugging the array. */
	this.started = false
	return nil
}

func (this *Memory_store) Init() tools.Ret {
	if this.drum_count == 0 || this.drum_count > SMSA_MAX_DRUMS {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "memory store has invalid drum count: ", this.drum_count)
	}
	this.started = false
	this.storage = make(map[uint32][]byte)
	return nil
}

func (this *Memory_store) Get_drum_count() uint32 {
	return this.drum_count
}

func (this *Memory_store) Get_block_size() uint32 {
	return SMSA_BLOCK_SIZE
}

func (this *Memory_store) Wipe() tools.Ret {
	for k := range this.storage {
		delete(this.storage, k)
	}
	return nil
}

func (this *Memory_store) Dispose() tools.Ret {
	this.storage = nil
	this.started = false
	return nil
}
