package tools

import (
	"flag"
	"strings"

	"github.com/golang/glog"
)

const (
	CommandB3dm = "b3dm"
	CommandPnts = "pnts"
	CommandInfo = "info"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type TilerFlags struct {
	Input   *string  `json:"input"`
	Output  *string  `json:"output"`
	Srid    *int     `json:"srid"`
	ZOffset *float64 `json:"zoffset"`
}

type CommonFlags struct {
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
}

type FlagsForCommandB3dm struct {
	TilerFlags
	CommonFlags
	Table          *string `json:"table"`
	GeometryColumn *string `json:"geometry_column"`
	IDColumn       *string `json:"id_column"`
	Attributes     *string `json:"attributes"`
	BatchSize      *int    `json:"batch_size"`
	YUp            *bool   `json:"y_up"`
}

type FlagsForCommandPnts struct {
	TilerFlags
	CommonFlags
	FolderProcessing          *bool
	RecursiveFolderProcessing *bool
	PointsPerTile             *int `json:"points_per_tile"`
}

type FlagsForCommandInfo struct {
	CommonFlags
	Input  *string `json:"input"`
	Pretty *bool   `json:"pretty"`
}

// Splits a comma separated list, dropping blanks
func (f FlagsForCommandB3dm) AttributeList() []string {
	if f.Attributes == nil {
		return nil
	}
	var attributes []string
	for _, attribute := range strings.Split(*f.Attributes, ",") {
		if attribute = strings.TrimSpace(attribute); attribute != "" {
			attributes = append(attributes, attribute)
		}
	}
	return attributes
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	// -v belongs to glog verbosity
	version := defineBoolFlag("version", "", false, "Displays the version of cesium_tilecontent.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandB3dm(args []string) (FlagsForCommandB3dm, error) {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-b3dm", flag.ContinueOnError)

	tilerFlags := defineTilerFlags(flagCommand, "Specifies the input sqlite database.")
	table := defineStringFlagCommand(flagCommand, "table", "", "", "Table holding the features to export.")
	geometryColumn := defineStringFlagCommand(flagCommand, "geometry-column", "g", "geom", "Column holding the WKB multipolygon or polyhedral surface of every feature.")
	idColumn := defineStringFlagCommand(flagCommand, "id-column", "", "", "Column exported as the id batch property. Defaults to the sqlite rowid.")
	attributes := defineStringFlagCommand(flagCommand, "attributes", "a", "", "Comma separated columns exported as batch properties. Defaults to all columns but the geometry and id ones.")
	batchSize := defineIntFlagCommand(flagCommand, "batch-size", "b", 100, "Maximum number of features per b3dm tile.")
	yUp := defineBoolFlagCommand(flagCommand, "y-up", "y", false, "Rotates the glTF content so that the up axis is Y.")
	commonFlags := defineCommonFlags(flagCommand)

	if err := flagCommand.Parse(args); err != nil {
		return FlagsForCommandB3dm{}, err
	}

	return FlagsForCommandB3dm{
		TilerFlags:     tilerFlags,
		CommonFlags:    commonFlags,
		Table:          table,
		GeometryColumn: geometryColumn,
		IDColumn:       idColumn,
		Attributes:     attributes,
		BatchSize:      batchSize,
		YUp:            yUp,
	}, nil
}

func ParseFlagsForCommandPnts(args []string) (FlagsForCommandPnts, error) {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-pnts", flag.ContinueOnError)

	tilerFlags := defineTilerFlags(flagCommand, "Specifies the input xyz file/folder.")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all xyz files from input folder. Input must be a folder if specified")
	recursiveFolderProcessing := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all .xyz files inside the subfolders")
	pointsPerTile := defineIntFlagCommand(flagCommand, "points-per-tile", "p", 50000, "Maximum number of points per pnts tile.")
	commonFlags := defineCommonFlags(flagCommand)

	if err := flagCommand.Parse(args); err != nil {
		return FlagsForCommandPnts{}, err
	}

	return FlagsForCommandPnts{
		TilerFlags:                tilerFlags,
		CommonFlags:               commonFlags,
		FolderProcessing:          folderProcessing,
		RecursiveFolderProcessing: recursiveFolderProcessing,
		PointsPerTile:             pointsPerTile,
	}, nil
}

func ParseFlagsForCommandInfo(args []string) (FlagsForCommandInfo, error) {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-info", flag.ContinueOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the pnts or b3dm file to describe.")
	pretty := defineBoolFlagCommand(flagCommand, "pretty", "p", false, "Indents the feature table, batch table and glTF JSON.")
	commonFlags := defineCommonFlags(flagCommand)

	if err := flagCommand.Parse(args); err != nil {
		return FlagsForCommandInfo{}, err
	}

	return FlagsForCommandInfo{
		CommonFlags: commonFlags,
		Input:       input,
		Pretty:      pretty,
	}, nil
}

func defineTilerFlags(flagCommand *flag.FlagSet, inputUsage string) TilerFlags {
	return TilerFlags{
		Input:   defineStringFlagCommand(flagCommand, "input", "i", "", inputUsage),
		Output:  defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the tiles."),
		Srid:    defineIntFlagCommand(flagCommand, "srid", "e", 4326, "EPSG srid code of input coordinates."),
		ZOffset: defineFloat64FlagCommand(flagCommand, "zoffset", "z", 0, "Vertical offset to apply to coordinates, in meters."),
	}
}

func defineCommonFlags(flagCommand *flag.FlagSet) CommonFlags {
	return CommonFlags{
		Silent:       defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
		LogTimestamp: defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages."),
		Help:         defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help."),
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
