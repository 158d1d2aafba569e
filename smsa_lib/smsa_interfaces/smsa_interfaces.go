// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

// Package smsa_interfaces has the contracts between the smsa driver, the controller it talks to
// and the drum storage behind that controller.
package smsa_interfaces

import "github.com/nixomose/nixomosegotools/tools"

type Smsa_drum_store_interface interface {

	/* this is what actually holds the drum contents. the controller simulator is the only thing
	that talks to it, the driver never does, the driver only gets to send instructions.
	drum and block numbers are already range checked by the controller by the time they get here,
	but the stores check again anyway because they can be used directly for setup and dumping. */

	Init() tools.Ret

	Is_backing_store_uninitialized() (tools.Ret, bool)

	Startup(force bool) tools.Ret

	Shutdown() tools.Ret

	Load_block(drum uint32, block uint32) (tools.Ret, *[]byte)

	Store_block(drum uint32, block uint32, data *[]byte) tools.Ret

	Format_drum(drum uint32) tools.Ret // zero out every block in the drum

	Get_drum_count() uint32

	Get_block_size() uint32

	Wipe() tools.Ret // zero out everything, header included, so it becomes inittable again

	Dispose() tools.Ret
}
