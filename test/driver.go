// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nixomose/nixomosegotools/tools"
	"github.com/nixomose/smsa_driver/smsa_lib/smsa_src"
	"github.com/spf13/cobra"
)

var config Smsa_config = New_smsa_config()
var env_file string

var flag_drums uint32
var flag_image string
var flag_directio bool
var flag_log_level string

var rootCmd = &cobra.Command{
	Use:   "smsa_test",
	Short: "exercise the smsa disk array driver against an image file",
	Long: `smsa_test formats, reads, writes and dumps an smsa disk array kept in an image file, ` +
		`and runs the driver self tests against a memory or file backed array.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return load_config(cmd)
	},
}

func load_config(cmd *cobra.Command) error {
	/* defaults, then .env, then the environment, then flags. */
	config = New_smsa_config()
	if err := Load_env_file(env_file); err != nil {
		return fmt.Errorf("unable to load %s: %w", env_file, err)
	}
	var log = tools.New_Nixomosetools_logger(tools.INFO)
	if ret := config.Apply_env(log); ret != nil {
		return ret
	}
	var flags = cmd.Flags()
	if flags.Changed("drums") {
		config.Drum_count = flag_drums
	}
	if flags.Changed("image") {
		config.Image_file = flag_image
	}
	if flags.Changed("directio") {
		config.Directio = flag_directio
	}
	if flags.Changed("log-level") {
		config.Log_level = flag_log_level
	}
	return as_error(config.Validate(log))
}

func as_error(ret tools.Ret) error {
	if ret == nil {
		return nil
	}
	return ret
}

type smsa_array struct {
	log    *tools.Nixomosetools_logger
	fstore *smsa_src.File_store
	sim    *smsa_src.Smsa_simulator
	driver *smsa_src.Smsa_driver
}

func bring_up(log *tools.Nixomosetools_logger, init bool) (tools.Ret, *smsa_array) {
	/* open the image and mount the array. if init is set the image is created from scratch
	and every drum formatted on the way up. */
	var a smsa_array
	a.log = log
	a.fstore = smsa_src.New_File_store(log, config.Image_file, config.Drum_count, config.Make_iopath())

	var ret tools.Ret
	if init {
		if ret = a.fstore.Init(); ret != nil {
			return ret, nil
		}
	} else {
		var uninit bool
		if ret, uninit = a.fstore.Is_backing_store_uninitialized(); ret != nil {
			return ret, nil
		}
		if uninit {
			return tools.ErrorWithCode(log, smsa_src.SMSA_ERROR_INVALID_HEADER, "image ", config.Image_file,
				" has not been formatted, run format first"), nil
		}
	}

	if ret = a.fstore.Startup(false); ret != nil {
		return ret, nil
	}
	a.sim = smsa_src.New_Smsa_simulator(log, a.fstore)
	if ret, a.driver = smsa_src.New_Smsa_driver(log, a.sim, config.Drum_count); ret != nil {
		a.fstore.Shutdown()
		return ret, nil
	}
	if ret = a.driver.Vmount(init); ret != nil {
		a.fstore.Shutdown()
		return ret, nil
	}
	return nil, &a
}

func bring_down(a *smsa_array) tools.Ret {
	var ret tools.Ret
	if a.driver.Is_mounted() {
		ret = a.driver.Vunmount()
	}
	if sret := a.fstore.Shutdown(); sret != nil && ret == nil {
		ret = sret
	}
	return ret
}

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "create the image file and format every drum",
	RunE: func(cmd *cobra.Command, args []string) error {
		var log = config.Make_logger()
		var ret, a = bring_up(log, true)
		if ret != nil {
			return ret
		}
		a.driver.Print()
		return as_error(bring_down(a))
	},
}

var write_addr uint32
var write_data string

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "write a string to a virtual address",
	RunE: func(cmd *cobra.Command, args []string) error {
		var addr = write_addr
		var log = config.Make_logger()
		var ret, a = bring_up(log, false)
		if ret != nil {
			return ret
		}
		var data = []byte(write_data)
		if ret = a.driver.Vwrite(addr, uint32(len(data)), data); ret != nil {
			bring_down(a)
			return ret
		}
		log.Info("wrote ", len(data), " bytes at ", fmt.Sprintf("0x%06x", addr))
		return as_error(bring_down(a))
	},
}

var read_addr uint32
var read_len uint32

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "read from a virtual address and hex dump it",
	RunE: func(cmd *cobra.Command, args []string) error {
		var addr = read_addr
		var log = config.Make_logger()
		var ret, a = bring_up(log, false)
		if ret != nil {
			return ret
		}
		var buf = make([]byte, read_len)
		if ret = a.driver.Vread(addr, read_len, buf); ret != nil {
			bring_down(a)
			return ret
		}
		fmt.Fprint(cmd.OutOrStdout(), tools.Dump(buf))
		return as_error(bring_down(a))
	},
}

var dump_out string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "copy the whole array out to a file and unmount",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("out") {
			config.Dump_file = dump_out
		}
		var log = config.Make_logger()
		var ret, a = bring_up(log, false)
		if ret != nil {
			return ret
		}
		if ret = a.driver.Vunmount_and_dump(config.Dump_file); ret != nil {
			bring_down(a)
			return ret
		}
		return as_error(bring_down(a))
	},
}

var selftest_memory bool

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "run the driver tests against a memory store or a scratch image",
	RunE: func(cmd *cobra.Command, args []string) error {
		var log = config.Make_logger()
		var lib = New_smsa_test_lib(log)
		if selftest_memory {
			return as_error(selftest_on_memory(log, &lib))
		}
		return as_error(selftest_on_file(log, &lib))
	},
}

func selftest_on_memory(log *tools.Nixomosetools_logger, lib *smsa_test_lib) tools.Ret {
	var mstore = smsa_src.New_memory_store(log, config.Drum_count)
	var ret tools.Ret
	if ret = mstore.Init(); ret != nil {
		return ret
	}
	if ret = mstore.Startup(false); ret != nil {
		return ret
	}
	defer mstore.Dispose()

	var sim = smsa_src.New_Smsa_simulator(log, mstore)
	var driver *smsa_src.Smsa_driver
	if ret, driver = smsa_src.New_Smsa_driver(log, sim, config.Drum_count); ret != nil {
		return ret
	}
	if ret = driver.Vmount(true); ret != nil {
		return ret
	}
	if ret = lib.Run_all(driver); ret != nil {
		return ret
	}
	driver.Print()
	return driver.Vunmount()
}

func selftest_on_file(log *tools.Nixomosetools_logger, lib *smsa_test_lib) tools.Ret {
	/* never the configured image, we'd wreck it. */
	var dir, err = os.MkdirTemp("", "smsa_selftest")
	if err != nil {
		return tools.ErrorWithCode(log, smsa_src.SMSA_ERROR_INVALID_ARGUMENT, "unable to make scratch dir: ", err)
	}
	defer os.RemoveAll(dir)
	config.Image_file = filepath.Join(dir, "selftest.img")

	var ret, a = bring_up(log, true)
	if ret != nil {
		return ret
	}
	if ret = lib.Run_all(a.driver); ret != nil {
		bring_down(a)
		return ret
	}
	a.driver.Print()
	return bring_down(a)
}

func init() {
	var pf = rootCmd.PersistentFlags()
	pf.StringVar(&env_file, "env-file", ".env", "file to load SMSA_* settings from")
	pf.Uint32Var(&flag_drums, "drums", smsa_src.SMSA_DEFAULT_DRUM_COUNT, "number of drums in the array, 1 to 16")
	pf.StringVar(&flag_image, "image", "", "image file holding the array")
	pf.BoolVar(&flag_directio, "directio", false, "open the image with O_DIRECT")
	pf.StringVar(&flag_log_level, "log-level", "info", "debug or info")

	writeCmd.Flags().Uint32Var(&write_addr, "addr", 0, "virtual address, 0x prefix for hex")
	writeCmd.Flags().StringVar(&write_data, "data", "", "string to write")
	readCmd.Flags().Uint32Var(&read_addr, "addr", 0, "virtual address, 0x prefix for hex")
	readCmd.Flags().Uint32Var(&read_len, "len", smsa_src.SMSA_BLOCK_SIZE, "number of bytes to read")
	dumpCmd.Flags().StringVar(&dump_out, "out", "", "file to dump the array into")
	selftestCmd.Flags().BoolVar(&selftest_memory, "memory", false, "use a memory store instead of a scratch image")

	rootCmd.AddCommand(formatCmd, writeCmd, readCmd, dumpCmd, selftestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
