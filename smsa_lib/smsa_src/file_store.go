// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

/* a drum store that keeps the whole disk array in one image file.
   block 0 of the file (one page) is the header, then the drums follow back to back.
	 drum d starts at SMSA_IMAGE_HEADER_SIZE + d * SMSA_DRUM_SIZE_IN_BYTES, block b of it is
	 b * SMSA_BLOCK_SIZE after that. only one process gets to have an image open at a time, we take
	 an exclusive flock on startup and drop it on shutdown. */

package smsa_src

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/nixomose/nixomosegotools/tools"
	smsa_lib_interfaces "github.com/nixomose/smsa_driver/smsa_lib/smsa_interfaces"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

type File_store struct {
	log *tools.Nixomosetools_logger

	m_filename   string
	m_drum_count uint32
	m_iopath     File_store_io_path

	m_file   *os.File
	m_header Smsa_header
	started  bool
}

// verify that file_store implements the drum store
var _ smsa_lib_interfaces.Smsa_drum_store_interface = &File_store{}
var _ smsa_lib_interfaces.Smsa_drum_store_interface = (*File_store)(nil)

func New_File_store(l *tools.Nixomosetools_logger, filename string, drum_count uint32, iopath File_store_io_path) *File_store {
	var f File_store
	f.log = l
	f.m_filename = filename
	f.m_drum_count = drum_count
	f.m_iopath = iopath
	return &f
}

func (this *File_store) Get_filename() string {
	return this.m_filename
}

func (this *File_store) Get_drum_count() uint32 {
	return this.m_drum_count
}

func (this *File_store) Get_block_size() uint32 {
	return SMSA_BLOCK_SIZE
}

func (this *File_store) Get_image_size() uint64 {
	return uint64(SMSA_IMAGE_HEADER_SIZE) + uint64(this.m_drum_count)*uint64(SMSA_DRUM_SIZE_IN_BYTES)
}

func (this *File_store) drum_position(drum uint32) uint64 {
	return uint64(SMSA_IMAGE_HEADER_SIZE) + uint64(drum)*uint64(SMSA_DRUM_SIZE_IN_BYTES)
}

func (this *File_store) block_position(drum uint32, block uint32) uint64 {
	return this.drum_position(drum) + uint64(block)*uint64(SMSA_BLOCK_SIZE)
}

func (this *File_store) Init() tools.Ret {
	/* create the image, write the header into block 0 and zero out every drum. */
	if this.m_drum_count == 0 || this.m_drum_count > SMSA_MAX_DRUMS {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "file store has invalid drum count: ", this.m_drum_count)
	}
	if this.started {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "can't init file store ", this.m_filename, " while it is started")
	}

	var f, err = this.m_iopath.Open_file(this.m_filename, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "unable to create image file ", this.m_filename, ", err: ", err)
	}
	defer f.Close()

	if ret := this.lock_exclusive(f, "init"); ret != nil {
		return ret
	}

	if err = f.Truncate(int64(this.Get_image_size())); err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to size image file ", this.m_filename, ", err: ", err)
	}

	var ret tools.Ret
	if ret = this.zero_drums(f); ret != nil {
		return ret
	}

	this.m_header = New_smsa_header(this.m_drum_count)
	if ret = this.write_header(f); ret != nil {
		return ret
	}
	if err = unix.Fsync(int(f.Fd())); err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to sync image file ", this.m_filename, ", err: ", err)
	}
	this.log.Info("initialized image file ", this.m_filename, " with ", this.m_drum_count, " drums")
	return nil
}

func (this *File_store) lock_exclusive(f *os.File, what string) tools.Ret {
	/* the lock goes away when f is closed. */
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "can't ", what, " image file ", this.m_filename,
			", it is in use, err: ", err)
	}
	return nil
}

func (this *File_store) write_header(f *os.File) tools.Ret {
	var ret, data = this.m_header.Serialize(this.log)
	if ret != nil {
		return ret
	}
	var page = make([]byte, SMSA_IMAGE_HEADER_SIZE)
	copy(page, *data)
	if err := this.m_iopath.Write_at(f, 0, page); err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to write header to ", this.m_filename, ", err: ", err)
	}
	return nil
}

func (this *File_store) zero_drums(f *os.File) tools.Ret {
	/* each drum is its own page aligned region of the file so they can all go at once. */
	var group *errgroup.Group
	group, _ = errgroup.WithContext(context.Background())
	var lp uint32
	for lp = 0; lp < this.m_drum_count; lp++ {
		var drum uint32 = lp // make a copy of lp to pass to go routine
		group.Go(func() error {
			var zeroes = make([]byte, SMSA_DRUM_SIZE_IN_BYTES)
			return this.m_iopath.Write_at(f, this.drum_position(drum), zeroes)
		})
	}
	var err = group.Wait()
	if err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to zero drums in ", this.m_filename, ", err: ", err)
	}
	return nil
}

func (this *File_store) Is_backing_store_uninitialized() (tools.Ret, bool) {
	/* Read the header page and see if it's all zeroes. a file that isn't there or is too short to
	have a header is uninitialized too. */

	var f, err = this.m_iopath.Open_file(this.m_filename, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, true
		}
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "unable to open image file ", this.m_filename, ", err: ", err), false
	}
	defer f.Close()

	var bresp []byte
	if bresp, err = this.m_iopath.Read_at(f, 0, SMSA_IMAGE_HEADER_SIZE); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to read header of ", this.m_filename, ", err: ", err), false
	}

	for lp := 0; lp < len(bresp); lp++ {
		if bresp[lp] != 0 {
			return nil, false
		}
	}
	return nil, true
}

func (this *File_store) Startup(force bool) tools.Ret {
	/* open the image, lock it, and make sure it's the geometry we were told it is.
	force means start up even if somebody else has it locked, you get to keep the pieces. */
	if this.started {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "file store ", this.m_filename, " has already been started up, not starting again")
	}

	var f, err = this.m_iopath.Open_file(this.m_filename, os.O_RDWR, 0)
	if err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "unable to open image file ", this.m_filename, ", err: ", err)
	}

	if err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if force == false {
			f.Close()
			return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "image file ", this.m_filename, " is in use, err: ", err)
		}
		this.log.Error("image file ", this.m_filename, " is locked by someone else, starting up anyway")
	}

	var data []byte
	if data, err = this.m_iopath.Read_at(f, 0, SMSA_IMAGE_HEADER_SIZE); err != nil {
		f.Close()
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_HEADER, "unable to read header of ", this.m_filename, ", err: ", err)
	}

	var ret tools.Ret
	if ret = this.m_header.Deserialize(this.log, &data); ret != nil {
		f.Close()
		return ret
	}
	if ret = this.m_header.Verify_geometry(this.log, this.m_drum_count); ret != nil {
		f.Close()
		return ret
	}

	this.m_file = f
	this.started = true
	this.log.Debug("started file store ", this.m_filename, " directio: ", this.m_iopath.Is_directio())
	return nil
}

func (this *File_store) Shutdown() tools.Ret {
	if this.started == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "file store ", this.m_filename, " hasn't been started, can't be shut down")
	}
	var fd = int(this.m_file.Fd())
	var err = unix.Fsync(fd)
	var uerr = unix.Flock(fd, unix.LOCK_UN)
	var cerr = this.m_file.Close()
	this.m_file = nil
	this.started = false
	if err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to sync ", this.m_filename, " on shutdown, err: ", err)
	}
	if uerr != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to unlock ", this.m_filename, " on shutdown, err: ", uerr)
	}
	if cerr != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to close ", this.m_filename, " on shutdown, err: ", cerr)
	}
	return nil
}

func (this *File_store) check_limits(drum uint32, block uint32) tools.Ret {
	if this.started == false {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "file store ", this.m_filename, " has not been started")
	}
	if drum >= this.m_drum_count {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_DRUM, "file store access to drum ", drum,
			" but there are only ", this.m_drum_count, " drums")
	}
	if block >= SMSA_BLOCKS_PER_DRUM {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_BAD_BLOCK, "file store access to block ", block,
			" but there are only ", SMSA_BLOCKS_PER_DRUM, " blocks per drum")
	}
	return nil
}

func (this *File_store) Load_block(drum uint32, block uint32) (tools.Ret, *[]byte) {
	if ret := this.check_limits(drum, block); ret != nil {
		return ret, nil
	}
	var data, err = this.m_iopath.Read_at(this.m_file, this.block_position(drum, block), SMSA_BLOCK_SIZE)
	if err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to read drum ", drum, " block ", block,
			" from ", this.m_filename, ", err: ", err), nil
	}
	return nil, &data
}

func (this *File_store) Store_block(drum uint32, block uint32, data *[]byte) tools.Ret {
	if ret := this.check_limits(drum, block); ret != nil {
		return ret
	}
	if data == nil || uint32(len(*data)) != SMSA_BLOCK_SIZE {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "file store block write must be exactly ",
			SMSA_BLOCK_SIZE, " bytes")
	}
	if err := this.m_iopath.Write_at(this.m_file, this.block_position(drum, block), *data); err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to write drum ", drum, " block ", block,
			" to ", this.m_filename, ", err: ", err)
	}
	return nil
}

func (this *File_store) Format_drum(drum uint32) tools.Ret {
	if ret := this.check_limits(drum, 0); ret != nil {
		return ret
	}
	var zeroes = make([]byte, SMSA_DRUM_SIZE_IN_BYTES)
	if err := this.m_iopath.Write_at(this.m_file, this.drum_position(drum), zeroes); err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to format drum ", drum,
			" in ", this.m_filename, ", err: ", err)
	}
	this.log.Debug("file store formatted drum: ", drum)
	return nil
}

func (this *File_store) Wipe() tools.Ret {
	/* zero out the header page so as to make it inittable again. the drums are left alone, init
	zeroes them anyway. */
	if this.started {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_DEVICE_STATE, "can't wipe file store ", this.m_filename, " while it is started")
	}
	var f, err = this.m_iopath.Open_file(this.m_filename, os.O_RDWR, 0)
	if err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_INVALID_ARGUMENT, "unable to open image file ", this.m_filename, ", err: ", err)
	}
	defer f.Close()
	if ret := this.lock_exclusive(f, "wipe"); ret != nil {
		return ret
	}
	if err = this.m_iopath.Write_at(f, 0, make([]byte, SMSA_IMAGE_HEADER_SIZE)); err != nil {
		return tools.ErrorWithCode(this.log, SMSA_ERROR_CONTROLLER_FAILURE, "unable to wipe header of ", this.m_filename, ", err: ", err)
	}
	return nil
}

func (this *File_store) Dispose() tools.Ret {
	if this.started {
		return this.Shutdown()
	}
	return nil
}
