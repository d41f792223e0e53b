package tiler

type ITiler interface {
	RunTiler(opts *TilerOptions) error
}

// Contains the options needed for the tiling algorithm
type TilerOptions struct {
	Input            string  // Input sqlite database, xyz file or folder
	Output           string  // Output folder where tiles are written
	Srid             int     // EPSG code for SRID of input coordinates
	ZOffset          float64 // Z Offset in meters to apply to coordinates during conversion
	FolderProcessing bool    // Enables the processing of all xyz files in folder
	Recursive        bool    // Recursive lookup of xyz files in subfolders

	Command          string
	TilerB3dmOptions *TilerB3dmOptions
	TilerPntsOptions *TilerPntsOptions
	TilerInfoOptions *TilerInfoOptions
}

type TilerB3dmOptions struct {
	Table          string   // Table holding the features
	GeometryColumn string   // Column holding WKB multipolygons or polyhedral surfaces
	IDColumn       string   // Column exported as the batch table id property
	Attributes     []string // Columns exported as batch table properties, all other columns when empty
	BatchSize      int      // Maximum number of features per tile
	YUp            bool     // Rotates the glTF content from z-up to y-up
}

type TilerPntsOptions struct {
	PointsPerTile int // Maximum number of points per tile
}

type TilerInfoOptions struct {
	Pretty bool // Indents the JSON blocks
}

func (opt *TilerOptions) Copy() *TilerOptions {
	newOpt := &TilerOptions{
		Input:            opt.Input,
		Output:           opt.Output,
		Srid:             opt.Srid,
		ZOffset:          opt.ZOffset,
		FolderProcessing: opt.FolderProcessing,
		Recursive:        opt.Recursive,
		Command:          opt.Command,
	}

	if opt.TilerB3dmOptions != nil {
		b3dmOpt := *opt.TilerB3dmOptions
		b3dmOpt.Attributes = append([]string(nil), opt.TilerB3dmOptions.Attributes...)
		newOpt.TilerB3dmOptions = &b3dmOpt
	}

	if opt.TilerPntsOptions != nil {
		pntsOpt := *opt.TilerPntsOptions
		newOpt.TilerPntsOptions = &pntsOpt
	}

	if opt.TilerInfoOptions != nil {
		infoOpt := *opt.TilerInfoOptions
		newOpt.TilerInfoOptions = &infoOpt
	}

	return newOpt
}
