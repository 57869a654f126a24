package recording

// NumGlomeruli is the fixed row count of the neural matrix, ordered left to right.
const NumGlomeruli = 16

// Schema names the arrays a recording archive is read from. Required fields
// must be present under exactly these names; optional fields may be absent
// or left blank to ignore them.
type Schema struct {
	Version int `toml:"version"`

	Neural   string `toml:"neural" env:"NEURAL"`
	VR       string `toml:"vr" env:"VR"`
	Boundary string `toml:"boundary" env:"BOUNDARY"`

	// optional
	Timestamps string `toml:"timestamps" env:"TIMESTAMPS"`
	Position   string `toml:"position" env:"POSITION"`
}

// SchemaV1 is the layout written by the imaging preprocessing pipeline.
var SchemaV1 = Schema{
	Version:    1,
	Neural:     "dfof",
	VR:         "vr_heading",
	Boundary:   "bar_on_time",
	Timestamps: "image_timestamps",
	Position:   "vr_position",
}

func (s Schema) required() []string {
	return []string{s.Neural, s.VR, s.Boundary}
}
