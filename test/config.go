// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package main

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nixomose/nixomosegotools/tools"
	"github.com/nixomose/smsa_driver/smsa_lib/smsa_src"
)

/* the library takes plain constructor params, the harness gets them from the environment,
   optionally loaded from a .env file, and then the command line flags win over both. */

const ENV_SMSA_DRUMS = "SMSA_DRUMS"
const ENV_SMSA_IMAGE = "SMSA_IMAGE"
const ENV_SMSA_DIRECTIO = "SMSA_DIRECTIO"
const ENV_SMSA_LOG_LEVEL = "SMSA_LOG_LEVEL"
const ENV_SMSA_DUMP_FILE = "SMSA_DUMP_FILE"

type Smsa_config struct {
	Drum_count uint32
	Image_file string
	Directio   bool
	Log_level  string
	Dump_file  string
}

func New_smsa_config() Smsa_config {
	var c Smsa_config
	c.Drum_count = smsa_src.SMSA_DEFAULT_DRUM_COUNT
	c.Image_file = "/tmp/smsa.img"
	c.Directio = false // if this is true the image has to live on something that supports O_DIRECT, tmpfs doesn't.
	c.Log_level = "info"
	c.Dump_file = "/tmp/smsa.dump"
	return c
}

func Load_env_file(filename string) error {
	/* a missing .env is fine, a broken one isn't. */
	var err = godotenv.Load(filename)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (this *Smsa_config) Apply_env(log *tools.Nixomosetools_logger) tools.Ret {
	if val, ok := os.LookupEnv(ENV_SMSA_DRUMS); ok {
		var err, n = tools.Stringtouint32(strings.TrimSpace(val))
		if err != nil {
			return tools.ErrorWithCode(log, smsa_src.SMSA_ERROR_INVALID_ARGUMENT, ENV_SMSA_DRUMS, " is not a number: ", val)
		}
		this.Drum_count = n
	}
	if val, ok := os.LookupEnv(ENV_SMSA_IMAGE); ok {
		this.Image_file = val
	}
	if val, ok := os.LookupEnv(ENV_SMSA_DIRECTIO); ok {
		var b, err = strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return tools.ErrorWithCode(log, smsa_src.SMSA_ERROR_INVALID_ARGUMENT, ENV_SMSA_DIRECTIO, " is not true or false: ", val)
		}
		this.Directio = b
	}
	if val, ok := os.LookupEnv(ENV_SMSA_LOG_LEVEL); ok {
		this.Log_level = strings.ToLower(strings.TrimSpace(val))
	}
	if val, ok := os.LookupEnv(ENV_SMSA_DUMP_FILE); ok {
		this.Dump_file = val
	}
	return nil
}

func (this *Smsa_config) Validate(log *tools.Nixomosetools_logger) tools.Ret {
	if this.Drum_count == 0 || this.Drum_count > smsa_src.SMSA_MAX_DRUMS {
		return tools.ErrorWithCode(log, smsa_src.SMSA_ERROR_INVALID_ARGUMENT, "drum count must be between 1 and ",
			smsa_src.SMSA_MAX_DRUMS, ", got ", this.Drum_count)
	}
	if this.Image_file == "" {
		return tools.ErrorWithCode(log, smsa_src.SMSA_ERROR_INVALID_ARGUMENT, "no image file given")
	}
	if this.Log_level != "debug" && this.Log_level != "info" {
		return tools.ErrorWithCode(log, smsa_src.SMSA_ERROR_INVALID_ARGUMENT, "log level must be debug or info, got ", this.Log_level)
	}
	return nil
}

func (this *Smsa_config) Make_logger() *tools.Nixomosetools_logger {
	if this.Log_level == "debug" {
		return tools.New_Nixomosetools_logger(tools.DEBUG)
	}
	return tools.New_Nixomosetools_logger(tools.INFO)
}

func (this *Smsa_config) Make_iopath() smsa_src.File_store_io_path {
	if this.Directio {
		return smsa_src.New_file_store_io_path_directio()
	}
	return smsa_src.New_file_store_io_path_default()
}
