// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_src

import (
	"testing"

	"github.com/nixomose/nixomosegotools/tools"
	"github.com/stretchr/testify/require"
)

//go:generate mockgen -destination "mock_smsa_interfaces_test.go" -package $GOPACKAGE -write_package_comment=false github.com/nixomose/smsa_driver/smsa_lib/smsa_interfaces Smsa_controller_interface

func new_test_log() *tools.Nixomosetools_logger {
	return tools.New_Nixomosetools_logger(tools.INFO)
}

type test_array struct {
	log   *tools.Nixomosetools_logger
	store *Memory_store
	sim   *Smsa_simulator
	drv   *Smsa_driver
}

func bring_up_memory(t *testing.T, drum_count uint32) *test_array {
	/* memory store, simulator and driver, mounted and ready to go. */
	t.Helper()
	var a test_array
	a.log = new_test_log()
	a.store = New_memory_store(a.log, drum_count)
	require.Nil(t, a.store.Init())
	require.Nil(t, a.store.Startup(false))
	a.sim = New_Smsa_simulator(a.log, a.store)

	var ret tools.Ret
	ret, a.drv = New_Smsa_driver(a.log, a.sim, drum_count)
	require.Nil(t, ret)
	require.Nil(t, a.drv.Vmount(false))
	return &a
}

func make_pattern(start byte, length uint32) []byte {
	var out = make([]byte, length)
	for lp := uint32(0); lp < length; lp++ {
		out[lp] = start + byte(lp)
	}
	return out
}

func fill(val byte, length uint32) []byte {
	var out = make([]byte, length)
	for lp := range out {
		out[lp] = val
	}
	return out
}

func require_code(t *testing.T, ret tools.Ret, code int) {
	t.Helper()
	require.NotNil(t, ret)
	require.Equal(t, code, ret.Get_errcode(), ret.Get_errmsg())
}
