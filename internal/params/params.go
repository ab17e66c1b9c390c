// Package params resolves the run parameters of the encoder.
//
// Parameters come from three places, applied in order: the default literals of the
// registry, the argument list (which may pull in configuration files through -cf),
// and finally the stream header of a YUV4MPEG2 input file. The resolved record is
// then checked by Validator before any encoding work starts.
package params

// IntListCapacity is the number of values an integer list parameter can hold.
const IntListCapacity = 32

// IntList holds a parsed integer list. Index 0 is the number of values, which are
// stored from index 1.
type IntList [IntListCapacity + 1]int

// Count returns the number of values in the list.
func (l *IntList) Count() int { return l[0] }

// Values returns a copy of the populated values.
func (l *IntList) Values() []int {
	out := make([]int, l[0])
	copy(out, l[1:1+l[0]])
	return out
}

// Params is the full set of encoder settings.
type Params struct {
	InFile    string `toml:"infile" json:"infile"`
	OutFile   string `toml:"outfile" json:"outfile"`
	ReconFile string `toml:"reconfile" json:"reconfile"`
	StatFile  string `toml:"statfile" json:"statfile"`

	FileHeaderLen  int `toml:"file_headerlen" json:"file_headerlen"`
	FrameHeaderLen int `toml:"frame_headerlen" json:"frame_headerlen"`

	NumFrames int     `toml:"num_frames" json:"num_frames"`
	Skip      int     `toml:"skip" json:"skip"`
	Width     int     `toml:"width" json:"width"`
	Height    int     `toml:"height" json:"height"`
	FrameRate float64 `toml:"frame_rate" json:"frame_rate"`
	AspectNum int     `toml:"aspectnum" json:"aspectnum"`
	AspectDen int     `toml:"aspectden" json:"aspectden"`

	QP         int `toml:"qp" json:"qp"`
	Log2SBSize int `toml:"log2_sb_size" json:"log2_sb_size"`

	LambdaCoeffI  float64 `toml:"lambda_coeffI" json:"lambda_coeffI"`
	LambdaCoeffP  float64 `toml:"lambda_coeffP" json:"lambda_coeffP"`
	LambdaCoeffB  float64 `toml:"lambda_coeffB" json:"lambda_coeffB"`
	LambdaCoeffB0 float64 `toml:"lambda_coeffB0" json:"lambda_coeffB0"`
	LambdaCoeffB1 float64 `toml:"lambda_coeffB1" json:"lambda_coeffB1"`
	LambdaCoeffB2 float64 `toml:"lambda_coeffB2" json:"lambda_coeffB2"`
	LambdaCoeffB3 float64 `toml:"lambda_coeffB3" json:"lambda_coeffB3"`
	EarlySkipThr  float64 `toml:"early_skip_thr" json:"early_skip_thr"`

	EnableTBSplit  int `toml:"enable_tb_split" json:"enable_tb_split"`
	EnablePBSplit  int `toml:"enable_pb_split" json:"enable_pb_split"`
	MaxNumRef      int `toml:"max_num_ref" json:"max_num_ref"`
	HQPeriod       int `toml:"HQperiod" json:"HQperiod"`
	NumReorderPics int `toml:"num_reorder_pics" json:"num_reorder_pics"`
	DyadicCoding   int `toml:"dyadic_coding" json:"dyadic_coding"`
	InterpRef      int `toml:"interp_ref" json:"interp_ref"`

	DQPP  int `toml:"dqpP" json:"dqpP"`
	DQPB  int `toml:"dqpB" json:"dqpB"`
	DQPB0 int `toml:"dqpB0" json:"dqpB0"`
	DQPB1 int `toml:"dqpB1" json:"dqpB1"`
	DQPB2 int `toml:"dqpB2" json:"dqpB2"`
	DQPB3 int `toml:"dqpB3" json:"dqpB3"`
	DQPI  int `toml:"dqpI" json:"dqpI"`

	MQPP  float64 `toml:"mqpP" json:"mqpP"`
	MQPB  float64 `toml:"mqpB" json:"mqpB"`
	MQPB0 float64 `toml:"mqpB0" json:"mqpB0"`
	MQPB1 float64 `toml:"mqpB1" json:"mqpB1"`
	MQPB2 float64 `toml:"mqpB2" json:"mqpB2"`
	MQPB3 float64 `toml:"mqpB3" json:"mqpB3"`

	IntraPeriod      int `toml:"intra_period" json:"intra_period"`
	IntraRDO         int `toml:"intra_rdo" json:"intra_rdo"`
	MaxDeltaQP       int `toml:"max_delta_qp" json:"max_delta_qp"`
	DeltaQPStep      int `toml:"delta_qp_step" json:"delta_qp_step"`
	EncoderSpeed     int `toml:"encoder_speed" json:"encoder_speed"`
	Sync             int `toml:"sync" json:"sync"`
	Deblocking       int `toml:"deblocking" json:"deblocking"`
	CDEF             int `toml:"cdef" json:"cdef"` // 0: off, 1: slow, 2: medium, 3: fast
	CLPF             int `toml:"clpf" json:"clpf"` // 0: off, 1: SB-level, 2: frame-level
	SNRCalc          int `toml:"snrcalc" json:"snrcalc"`
	UseBlockContexts int `toml:"use_block_contexts" json:"use_block_contexts"`
	EnableBipred     int `toml:"enable_bipred" json:"enable_bipred"`

	Bitrate int `toml:"bitrate" json:"bitrate"`
	MaxQP   int `toml:"max_qp" json:"max_qp"`
	MinQP   int `toml:"min_qp" json:"min_qp"`
	MaxQPI  int `toml:"max_qpI" json:"max_qpI"`
	MinQPI  int `toml:"min_qpI" json:"min_qpI"`

	QMtx            int `toml:"qmtx" json:"qmtx"`
	QMtxOffset      int `toml:"qmtx_offset" json:"qmtx_offset"`
	Subsample       int `toml:"subsample" json:"subsample"`
	MaxCLPFStrength int `toml:"max_clpf_strength" json:"max_clpf_strength"`
	CFLIntra        int `toml:"cfl_intra" json:"cfl_intra"`
	CFLInter        int `toml:"cfl_inter" json:"cfl_inter"`

	BitDepth      int `toml:"bitdepth" json:"bitdepth"`             // internal: 8, 10 or 12
	FrameBitDepth int `toml:"frame_bitdepth" json:"frame_bitdepth"` // frame buffers: 8 or 16
	InputBitDepth int `toml:"input_bitdepth" json:"input_bitdepth"` // source: 8, 10 or 12
}

func newParams() *Params {
	return &Params{AspectNum: 1, AspectDen: 1}
}
