// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_src

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func new_test_file_store(t *testing.T, drum_count uint32) *File_store {
	t.Helper()
	var filename = filepath.Join(t.TempDir(), "smsa.img")
	return New_File_store(new_test_log(), filename, drum_count, New_file_store_io_path_default())
}

func TestFileStoreInit(t *testing.T) {
	var store = new_test_file_store(t, 3)

	var ret, uninit = store.Is_backing_store_uninitialized()
	require.Nil(t, ret)
	assert.True(t, uninit)

	require.Nil(t, store.Init())
	ret, uninit = store.Is_backing_store_uninitialized()
	require.Nil(t, ret)
	assert.False(t, uninit)

	var st, err = os.Stat(store.Get_filename())
	require.NoError(t, err)
	assert.Equal(t, int64(store.Get_image_size()), st.Size())
	assert.Equal(t, int64(4096+3*65536), st.Size())
}

func TestFileStoreEmptyFileIsUninitialized(t *testing.T) {
	var store = new_test_file_store(t, 1)
	require.NoError(t, os.WriteFile(store.Get_filename(), []byte("short"), 0644))

	var ret, uninit = store.Is_backing_store_uninitialized()
	require.Nil(t, ret)
	assert.True(t, uninit)

	/* not ours, can't start it */
	require.NoError(t, os.WriteFile(store.Get_filename(), make([]byte, 8192), 0644))
	require_code(t, store.Startup(false), SMSA_ERROR_INVALID_HEADER)
}

func TestFileStoreBadInit(t *testing.T) {
	require_code(t, new_test_file_store(t, 0).Init(), SMSA_ERROR_INVALID_ARGUMENT)
	require_code(t, new_test_file_store(t, SMSA_MAX_DRUMS+1).Init(), SMSA_ERROR_INVALID_ARGUMENT)
}

func TestFileStoreBlocksLandWhereExpected(t *testing.T) {
	var store = new_test_file_store(t, 2)
	require.Nil(t, store.Init())

	var data = make_pattern(0x30, SMSA_BLOCK_SIZE)
	require_code(t, store.Store_block(1, 2, &data), SMSA_ERROR_DEVICE_STATE)

	require.Nil(t, store.Startup(false))
	require.Nil(t, store.Store_block(1, 2, &data))
	require_code(t, store.Store_block(2, 0, &data), SMSA_ERROR_BAD_DRUM)
	require_code(t, store.Store_block(0, SMSA_BLOCKS_PER_DRUM, &data), SMSA_ERROR_BAD_BLOCK)
	var short = data[0:10]
	require_code(t, store.Store_block(0, 0, &short), SMSA_ERROR_INVALID_ARGUMENT)
	require.Nil(t, store.Shutdown())

	var raw, err = os.ReadFile(store.Get_filename())
	require.NoError(t, err)
	var pos = 4096 + 1*65536 + 2*256
	assert.Equal(t, data, raw[pos:pos+256])
	assert.Equal(t, fill(0, 256), raw[pos-256:pos])
	assert.Equal(t, fill(0, 256), raw[pos+256:pos+512])
}

func TestFileStorePersistsAcrossRestart(t *testing.T) {
	var store = new_test_file_store(t, 2)
	require.Nil(t, store.Init())
	require.Nil(t, store.Startup(false))
	var data = make_pattern(9, SMSA_BLOCK_SIZE)
	require.Nil(t, store.Store_block(0, 200, &data))
	require.Nil(t, store.Shutdown())

	var again = New_File_store(new_test_log(), store.Get_filename(), 2, New_file_store_io_path_default())
	var ret, uninit = again.Is_backing_store_uninitialized()
	require.Nil(t, ret)
	require.False(t, uninit)
	require.Nil(t, again.Startup(false))
	defer again.Dispose()

	ret, back := again.Load_block(0, 200)
	require.Nil(t, ret)
	assert.Equal(t, data, *back)
}

func TestFileStoreRejectsWrongGeometry(t *testing.T) {
	var store = new_test_file_store(t, 2)
	require.Nil(t, store.Init())

	var other = New_File_store(new_test_log(), store.Get_filename(), 3, New_file_store_io_path_default())
	require_code(t, other.Startup(false), SMSA_ERROR_INVALID_HEADER)
}

func TestFileStoreFormatDrum(t *testing.T) {
	var store = new_test_file_store(t, 2)
	require.Nil(t, store.Init())
	require.Nil(t, store.Startup(false))
	defer store.Dispose()

	var data = fill(0xee, SMSA_BLOCK_SIZE)
	require.Nil(t, store.Store_block(0, 255, &data))
	require.Nil(t, store.Store_block(1, 0, &data))
	require.Nil(t, store.Format_drum(0))

	var _, b0 = store.Load_block(0, 255)
	var _, b1 = store.Load_block(1, 0)
	assert.Equal(t, fill(0, SMSA_BLOCK_SIZE), *b0)
	assert.Equal(t, data, *b1)
}

func TestFileStoreWipe(t *testing.T) {
	var store = new_test_file_store(t, 1)
	require.Nil(t, store.Init())
	require.Nil(t, store.Startup(false))
	require_code(t, store.Wipe(), SMSA_ERROR_DEVICE_STATE)
	require.Nil(t, store.Shutdown())

	require.Nil(t, store.Wipe())
	var ret, uninit = store.Is_backing_store_uninitialized()
	require.Nil(t, ret)
	assert.True(t, uninit)
	require_code(t, store.Startup(false), SMSA_ERROR_INVALID_HEADER)
}

func TestFileStoreIsExclusive(t *testing.T) {
	var store = new_test_file_store(t, 1)
	require.Nil(t, store.Init())
	require.Nil(t, store.Startup(false))
	defer store.Dispose()
	require_code(t, store.Startup(false), SMSA_ERROR_DEVICE_STATE)

	var other = New_File_store(new_test_log(), store.Get_filename(), 1, New_file_store_io_path_default())
	require_code(t, other.Startup(false), SMSA_ERROR_DEVICE_STATE)

	require.Nil(t, other.Startup(true))
	require.Nil(t, other.Shutdown())
}

func TestFileStoreDirectio(t *testing.T) {
	var filename = filepath.Join(t.TempDir(), "smsa_direct.img")
	var iopath = New_file_store_io_path_directio()
	var f, err = iopath.Open_file(filename, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Skip("directio not supported here: ", err)
	}
	f.Close()

	var store = New_File_store(new_test_log(), filename, 2, iopath)
	require.Nil(t, store.Init())
	require.Nil(t, store.Startup(false))
	defer store.Dispose()

	/* sub-page writes next to each other, the read-modify-write must not clobber the neighbor */
	var a = fill(0xaa, SMSA_BLOCK_SIZE)
	var b = fill(0xbb, SMSA_BLOCK_SIZE)
	require.Nil(t, store.Store_block(1, 4, &a))
	require.Nil(t, store.Store_block(1, 5, &b))

	var ret, back = store.Load_block(1, 4)
	require.Nil(t, ret)
	assert.Equal(t, a, *back)
	ret, back = store.Load_block(1, 5)
	require.Nil(t, ret)
	assert.Equal(t, b, *back)
	assert.True(t, iopath.Is_directio())
	assert.Equal(t, uint32(4096), iopath.Get_alignment())
}

func TestDriverOnFileStore(t *testing.T) {
	var log = new_test_log()
	var filename = filepath.Join(t.TempDir(), "smsa.img")
	var store = New_File_store(log, filename, 2, New_file_store_io_path_default())
	require.Nil(t, store.Init())
	require.Nil(t, store.Startup(false))

	var sim = New_Smsa_simulator(log, store)
	var ret, drv = New_Smsa_driver(log, sim, 2)
	require.Nil(t, ret)
	require.Nil(t, drv.Vmount(true))

	var data = make_pattern(0x11, 1000)
	require.Nil(t, drv.Vwrite(0xfe80, 1000, data))
	require.Nil(t, drv.Vunmount())
	require.Nil(t, store.Shutdown())

	/* bring it back up from the image */
	var store2 = New_File_store(log, filename, 2, New_file_store_io_path_default())
	require.Nil(t, store2.Startup(false))
	defer store2.Dispose()
	var sim2 = New_Smsa_simulator(log, store2)
	var drv2 *Smsa_driver
	ret, drv2 = New_Smsa_driver(log, sim2, 2)
	require.Nil(t, ret)
	require.Nil(t, drv2.Vmount(false))

	var back = make([]byte, 1000)
	require.Nil(t, drv2.Vread(0xfe80, 1000, back))
	assert.Equal(t, data, back)

	require.Nil(t, drv2.Vunmount())
}

func TestFileStoreInitAndWipeRespectTheLock(t *testing.T) {
	var store = new_test_file_store(t, 1)
	require.Nil(t, store.Init())
	require.Nil(t, store.Startup(false))
	var data = fill(0x77, SMSA_BLOCK_SIZE)
	require.Nil(t, store.Store_block(0, 3, &data))

	var other = New_File_store(new_test_log(), store.Get_filename(), 1, New_file_store_io_path_default())
	require_code(t, other.Init(), SMSA_ERROR_DEVICE_STATE)
	require_code(t, other.Wipe(), SMSA_ERROR_DEVICE_STATE)

	var ret, back = store.Load_block(0, 3)
	require.Nil(t, ret)
	assert.Equal(t, data, *back)

	/* once it's let go, anybody can reinit it */
	require.Nil(t, store.Shutdown())
	require.Nil(t, other.Init())
}
