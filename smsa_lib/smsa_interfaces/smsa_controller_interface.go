// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package smsa_interfaces

import "github.com/nixomose/nixomosegotools/tools"

type Smsa_controller_interface interface {

	/* the controller only understands one thing: an encoded instruction word and maybe a block
	buffer to go with it. seeks don't touch the buffer, reads fill the whole block buffer with the
	block under the head, writes store the whole block buffer to the block under the head.
	nil ret is success, anything else is a failed operation and the driver gives up on the transfer. */

	Operation(instruction uint32, block *[]byte) tools.Ret
}
