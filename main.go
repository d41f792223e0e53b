/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"github.com/ecopia-map/cesium_tilecontent/pkg"
	"github.com/ecopia-map/cesium_tilecontent/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/golang/glog"
)

const VERSION = "1.0.0"

const logo = `
             _   _ _                       _             _
  ___ ___ __| |_(_) |___    ___ ___ _ _ _| |_ ___ _ _ _| |_
 |  _| -_|_ -|  _| | | -_|  |  _| . |   |_   _| -_|   |_   _|
 |___|___|___|_| |_|_|___|  |___|___|_|_| |_| |___|_|_| |_|
  A Cesium pnts and b3dm tile content tool written in golang
  Copyright YYYY
`

func main() {
	flagsGlobal := tools.ParseFlagsGlobal()
	defer glog.Flush()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Exit("Please specify a subcommand [b3dm|pnts|info].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandB3dm:
		mainCommandB3dm(args)
	case tools.CommandPnts:
		mainCommandPnts(args)
	case tools.CommandInfo:
		mainCommandInfo(args)
	default:
		glog.Exitf("Unrecognized command [%q]. Command must be one of [b3dm|pnts|info]", cmd)
	}
}

func mainCommandB3dm(args []string) {
	// Retrieve command line args
	flags, err := tools.ParseFlagsForCommandB3dm(args)
	if err != nil {
		glog.Exit("Error parsing input parameters: ", err)
	}
	if *flags.Help {
		showHelp()
		return
	}
	setupLogger(flags.CommonFlags)

	// Put args inside a TilerOptions struct
	opts := tiler.TilerOptions{
		Input:   *flags.Input,
		Output:  *flags.Output,
		Srid:    *flags.Srid,
		ZOffset: *flags.ZOffset,
		Command: tools.CommandB3dm,
		TilerB3dmOptions: &tiler.TilerB3dmOptions{
			Table:          *flags.Table,
			GeometryColumn: *flags.GeometryColumn,
			IDColumn:       *flags.IDColumn,
			Attributes:     flags.AttributeList(),
			BatchSize:      *flags.BatchSize,
			YUp:            *flags.YUp,
		},
	}

	// Validate TilerOptions
	if msg, res := validateOptionsForCommandB3dm(&opts); !res {
		glog.Exit("Error parsing input parameters: " + msg)
	}

	defer timeTrack(time.Now(), "b3dm export")
	err = pkg.NewTilerB3dm(std_algorithm_manager.NewAlgorithmManager(&opts)).RunTiler(&opts)
	if err != nil {
		glog.Exitf("Error while tiling: %+v", err)
	}
	tools.LogOutput("Conversion Completed")
}

// Validates the input options provided to the command line tool checking
// that input database and output folder exist
func validateOptionsForCommandB3dm(opts *tiler.TilerOptions) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input database not found", false
	}
	if _, err := os.Stat(opts.Output); os.IsNotExist(err) {
		return "Output folder not found", false
	}
	if opts.TilerB3dmOptions.Table == "" {
		return "table is required", false
	}
	if opts.TilerB3dmOptions.BatchSize <= 0 {
		return "batch-size must be positive", false
	}
	return "", true
}

func mainCommandPnts(args []string) {
	flags, err := tools.ParseFlagsForCommandPnts(args)
	if err != nil {
		glog.Exit("Error parsing input parameters: ", err)
	}
	if *flags.Help {
		showHelp()
		return
	}
	setupLogger(flags.CommonFlags)

	opts := tiler.TilerOptions{
		Input:            *flags.Input,
		Output:           *flags.Output,
		Srid:             *flags.Srid,
		ZOffset:          *flags.ZOffset,
		FolderProcessing: *flags.FolderProcessing,
		Recursive:        *flags.RecursiveFolderProcessing,
		Command:          tools.CommandPnts,
		TilerPntsOptions: &tiler.TilerPntsOptions{
			PointsPerTile: *flags.PointsPerTile,
		},
	}

	if msg, res := validateOptionsForCommandPnts(&opts); !res {
		glog.Exit("Error parsing input parameters: " + msg)
	}

	defer timeTrack(time.Now(), "pnts export")
	err = pkg.NewTilerPnts(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(&opts)).RunTiler(&opts)
	if err != nil {
		glog.Exitf("Error while tiling: %+v", err)
	}
	tools.LogOutput("Conversion Completed")
}

func validateOptionsForCommandPnts(opts *tiler.TilerOptions) (string, bool) {
	info, err := os.Stat(opts.Input)
	if os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if err == nil && info.IsDir() != opts.FolderProcessing {
		return "Input must be a folder if and only if folder processing is enabled", false
	}
	if _, err := os.Stat(opts.Output); os.IsNotExist(err) {
		return "Output folder not found", false
	}
	if opts.TilerPntsOptions.PointsPerTile <= 0 {
		return "points-per-tile must be positive", false
	}
	return "", true
}

func mainCommandInfo(args []string) {
	flags, err := tools.ParseFlagsForCommandInfo(args)
	if err != nil {
		glog.Exit("Error parsing input parameters: ", err)
	}
	if *flags.Help {
		showHelp()
		return
	}
	// stdout holds the report
	tools.DisableLogger()

	opts := tiler.TilerOptions{
		Input:   *flags.Input,
		Command: tools.CommandInfo,
		TilerInfoOptions: &tiler.TilerInfoOptions{
			Pretty: *flags.Pretty,
		},
	}
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		glog.Exit("Error parsing input parameters: Input file not found")
	}

	if err := pkg.NewTilerInfo(os.Stdout).RunTiler(&opts); err != nil {
		glog.Exitf("Error while reading tile: %+v", err)
	}
}

// set logging and timestamp logging
func setupLogger(flags tools.CommonFlags) {
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("cesium_tilecontent exports sqlite features as b3dm tiles, xyz point clouds as pnts tiles, and describes existing tiles")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: cesium_tilecontent [global flags] b3dm|pnts|info [command flags]")
	fmt.Println("Run a command with -help to list its flags.")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
