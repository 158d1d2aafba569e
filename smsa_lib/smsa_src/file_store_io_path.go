// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_src

import (
	"os"

	"github.com/ncw/directio"
)

/* the file store doesn't care how bytes get to the file, so the io path gets injected.
   the default path is plain pread/pwrite. the directio path has to play by O_DIRECT rules:
	 aligned buffers, aligned offsets, aligned lengths. our blocks are 256 bytes and a page is 4k,
	 so anything smaller than a page is done read-modify-write on the page(s) around it. */

type File_store_io_path interface {
	Open_file(filename string, flags int, perm os.FileMode) (*os.File, error)

	Read_at(f *os.File, pos uint64, length uint32) ([]byte, error)

	Write_at(f *os.File, pos uint64, data []byte) error

	Get_alignment() uint32

	Is_directio() bool
}

type File_store_io_path_default struct {
}

var _ File_store_io_path = (*File_store_io_path_default)(nil)

func New_file_store_io_path_default() File_store_io_path {
	return &File_store_io_path_default{}
}

func (this *File_store_io_path_default) Open_file(filename string, flags int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(filename, flags, perm)
}

func (this *File_store_io_path_default) Read_at(f *os.File, pos uint64, length uint32) ([]byte, error) {
	var data = make([]byte, length)
	var _, err = f.ReadAt(data, int64(pos))
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (this *File_store_io_path_default) Write_at(f *os.File, pos uint64, data []byte) error {
	var _, err = f.WriteAt(data, int64(pos))
	return err
}

func (this *File_store_io_path_default) Get_alignment() uint32 {
	return 0
}

func (this *File_store_io_path_default) Is_directio() bool {
	return false
}

type File_store_io_path_directio struct {
	alignment uint64
}

var _ File_store_io_path = (*File_store_io_path_directio)(nil)

func New_file_store_io_path_directio() File_store_io_path {
	var p File_store_io_path_directio
	p.alignment = uint64(directio.BlockSize)
	return &p
}

func (this *File_store_io_path_directio) Open_file(filename string, flags int, perm os.FileMode) (*os.File, error) {
	return directio.OpenFile(filename, flags, perm)
}

func (this *File_store_io_path_directio) aligned_range(pos uint64, length uint64) (start uint64, end uint64) {
	start = pos - (pos % this.alignment)
	end = pos + length
	if end%this.alignment != 0 {
		end += this.alignment - (end % this.alignment)
	}
	return start, end
}

func (this *File_store_io_path_directio) Read_at(f *os.File, pos uint64, length uint32) ([]byte, error) {
	var start, end = this.aligned_range(pos, uint64(length))
	var page = directio.AlignedBlock(int(end - start))
	var _, err = f.ReadAt(page, int64(start))
	if err != nil {
		return nil, err
	}
	var data = make([]byte, length)
	copy(data, page[pos-start:])
	return data, nil
}

func (this *File_store_io_path_directio) Write_at(f *os.File, pos uint64, data []byte) error {
	var start, end = this.aligned_range(pos, uint64(len(data)))
	var page = directio.AlignedBlock(int(end - start))
	if start != pos || end != pos+uint64(len(data)) {
		/* partial page, we need what's around us first. */
		if _, err := f.ReadAt(page, int64(start)); err != nil {
			return err
		}
	}
	copy(page[pos-start:], data)
	var _, err = f.WriteAt(page, int64(start))
	return err
}

func (this *File_store_io_path_directio) Get_alignment() uint32 {
	return uint32(this.alignment)
}

func (this *File_store_io_path_directio) Is_directio() bool {
	return true
}
