package params

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxParams is the default registry capacity.
const MaxParams = 200

// IncludeFlag names the parameter whose value is a configuration file to read in place.
const IncludeFlag = "-cf"

// Kind is the value type of a parameter.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindFlag
	KindIntegerList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindFlag:
		return "flag"
	case KindIntegerList:
		return "integer-list"
	default:
		return "unknown"
	}
}

// Destination is the typed slot a parameter writes to. The set of implementations is
// closed; build one with String, Int, Float, Flag, List or Include.
type Destination interface {
	kind() Kind
	format() (string, bool)
}

type stringDest struct{ p *string }
type intDest struct{ p *int }
type floatDest struct{ p *float64 }
type flagDest struct{ p *bool }
type listDest struct{ p *IntList }
type includeDest struct{}

// String binds a string parameter to p.
func String(p *string) Destination { return stringDest{p} }

// Int binds an integer parameter to p.
func Int(p *int) Destination { return intDest{p} }

// Float binds a floating point parameter to p.
func Float(p *float64) Destination { return floatDest{p} }

// Flag binds a value-less parameter to p; giving the flag sets p to true.
func Flag(p *bool) Destination { return flagDest{p} }

// List binds a comma separated integer list parameter to p.
func List(p *IntList) Destination { return listDest{p} }

// Include marks the parameter whose value names a nested configuration file.
func Include() Destination { return includeDest{} }

func (stringDest) kind() Kind  { return KindString }
func (intDest) kind() Kind     { return KindInteger }
func (floatDest) kind() Kind   { return KindFloat }
func (flagDest) kind() Kind    { return KindFlag }
func (listDest) kind() Kind    { return KindIntegerList }
func (includeDest) kind() Kind { return KindString }

func (d stringDest) format() (string, bool) {
	return *d.p, *d.p != ""
}

func (d intDest) format() (string, bool) {
	return strconv.Itoa(*d.p), true
}

func (d floatDest) format() (string, bool) {
	return strconv.FormatFloat(*d.p, 'g', -1, 64), true
}

func (d flagDest) format() (string, bool) {
	return "", *d.p
}

func (d listDest) format() (string, bool) {
	values := d.p.Values()
	if len(values) == 0 {
		return "", false
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ","), true
}

func (includeDest) format() (string, bool) { return "", false }

// Entry is one registered parameter.
type Entry struct {
	Name    string
	Default string // empty when the parameter has no default
	Help    string
	dest    Destination
}

// Kind returns the value type of the parameter.
func (e Entry) Kind() Kind { return e.dest.kind() }

// HasDefault reports whether the parameter is assigned a default before parsing.
func (e Entry) HasDefault() bool { return e.Default != "" }

// Value formats the current value of the destination. ok is false for unset
// strings and lists, cleared flags and the include parameter.
func (e Entry) Value() (string, bool) { return e.dest.format() }

// Registry is an ordered table of parameters. It is filled once and only read
// while parsing.
type Registry struct {
	entries  []Entry
	index    map[string]int
	capacity int
}

// NewRegistry creates an empty registry holding at most capacity entries.
// A capacity below 1 selects MaxParams.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = MaxParams
	}
	return &Registry{
		index:    make(map[string]int),
		capacity: capacity,
	}
}

// Register appends a parameter. def is the default literal, or "" for none.
func (r *Registry) Register(name, def string, dest Destination, help string) error {
	if len(r.entries) >= r.capacity {
		return &Error{
			Tier:    TierParse,
			Code:    ErrCodeRegistryFull,
			Param:   name,
			Message: fmt.Sprintf("Too many parameters: cannot register %s, capacity is %d", name, r.capacity),
		}
	}

	// Later duplicates are kept for listing but never found by Lookup.
	if _, exists := r.index[name]; !exists {
		r.index[name] = len(r.entries)
	}
	r.entries = append(r.entries, Entry{Name: name, Default: def, Help: help, dest: dest})
	return nil
}

// Lookup finds a parameter by exact, case-sensitive name. With duplicate names the
// first registered entry wins.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Entries returns the parameters in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered parameters.
func (r *Registry) Len() int { return len(r.entries) }

// defaultTokens renders "name default" pairs for every parameter with a default,
// in registration order. A flag contributes its name alone when the default is set.
func (r *Registry) defaultTokens() []string {
	tokens := make([]string, 0, 2*len(r.entries))
	for _, e := range r.entries {
		switch {
		case !e.HasDefault():
		case e.Kind() == KindFlag:
			if e.Default != "0" {
				tokens = append(tokens, e.Name)
			}
		default:
			tokens = append(tokens, e.Name, e.Default)
		}
	}
	return tokens
}

type registration struct {
	name string
	def  string
	dest Destination
	help string
}

// DefaultRegistry builds the encoder's parameter table bound to the fields of p.
func DefaultRegistry(p *Params) (*Registry, error) {
	table := []registration{
		{IncludeFlag, "", Include(), "read parameters from a configuration file"},
		{"-if", "", String(&p.InFile), "input file"},
		{"-ph", "0", Int(&p.FileHeaderLen), "bytes to skip at the start of the input file"},
		{"-fh", "0", Int(&p.FrameHeaderLen), "bytes to skip before each input frame"},
		{"-of", "", String(&p.OutFile), "output bitstream file"},
		{"-rf", "", String(&p.ReconFile), "reconstructed video file"},
		{"-stat", "", String(&p.StatFile), "statistics file"},
		{"-n", "600", Int(&p.NumFrames), "number of frames to encode"},
		{"-skip", "0", Int(&p.Skip), "number of input frames to skip"},
		{"-width", "1920", Int(&p.Width), "frame width"},
		{"-height", "1080", Int(&p.Height), "frame height"},
		{"-qp", "32", Int(&p.QP), "quantization parameter"},
		{"-log2_sb_size", "7", Int(&p.Log2SBSize), "log2 of the super block size"},
		{"-f", "60", Float(&p.FrameRate), "frame rate"},
		{"-lambda_coeffI", "1.0", Float(&p.LambdaCoeffI), "lambda scale for I frames"},
		{"-lambda_coeffP", "1.0", Float(&p.LambdaCoeffP), "lambda scale for P frames"},
		{"-lambda_coeffB", "1.0", Float(&p.LambdaCoeffB), "lambda scale for B frames"},
		{"-lambda_coeffB0", "1.0", Float(&p.LambdaCoeffB0), "lambda scale for B frames, layer 0"},
		{"-lambda_coeffB1", "1.0", Float(&p.LambdaCoeffB1), "lambda scale for B frames, layer 1"},
		{"-lambda_coeffB2", "1.0", Float(&p.LambdaCoeffB2), "lambda scale for B frames, layer 2"},
		{"-lambda_coeffB3", "1.0", Float(&p.LambdaCoeffB3), "lambda scale for B frames, layer 3"},
		{"-early_skip_thr", "0.0", Float(&p.EarlySkipThr), "early skip threshold"},
		{"-enable_tb_split", "0", Int(&p.EnableTBSplit), "enable transform block split"},
		{"-enable_pb_split", "0", Int(&p.EnablePBSplit), "enable prediction block split"},
		{"-max_num_ref", "1", Int(&p.MaxNumRef), "maximum number of reference frames (1-4)"},
		{"-HQperiod", "1", Int(&p.HQPeriod), "period of high quality frames"},
		{"-num_reorder_pics", "0", Int(&p.NumReorderPics), "number of pictures coded out of order"},
		{"-dyadic_coding", "1", Int(&p.DyadicCoding), "hierarchical coding order"},
		{"-interp_ref", "0", Int(&p.InterpRef), "interpolated reference mode"},
		{"-dqpP", "0", Int(&p.DQPP), "qp offset for P frames"},
		{"-dqpB", "0", Int(&p.DQPB), "qp offset for B frames"},
		{"-dqpB0", "0", Int(&p.DQPB0), "qp offset for B frames, layer 0"},
		{"-dqpB1", "0", Int(&p.DQPB1), "qp offset for B frames, layer 1"},
		{"-dqpB2", "0", Int(&p.DQPB2), "qp offset for B frames, layer 2"},
		{"-dqpB3", "0", Int(&p.DQPB3), "qp offset for B frames, layer 3"},
		{"-mqpP", "1.0", Float(&p.MQPP), "qp multiplier for P frames"},
		{"-mqpB", "1.0", Float(&p.MQPB), "qp multiplier for B frames"},
		{"-mqpB0", "1.0", Float(&p.MQPB0), "qp multiplier for B frames, layer 0"},
		{"-mqpB1", "1.0", Float(&p.MQPB1), "qp multiplier for B frames, layer 1"},
		{"-mqpB2", "1.0", Float(&p.MQPB2), "qp multiplier for B frames, layer 2"},
		{"-mqpB3", "1.0", Float(&p.MQPB3), "qp multiplier for B frames, layer 3"},
		{"-dqpI", "0", Int(&p.DQPI), "qp offset for I frames"},
		{"-intra_period", "0", Int(&p.IntraPeriod), "distance between intra frames, 0 for first frame only"},
		{"-intra_rdo", "0", Int(&p.IntraRDO), "rate distortion optimized intra mode decision"},
		{"-max_delta_qp", "0", Int(&p.MaxDeltaQP), "maximum block level qp change"},
		{"-delta_qp_step", "1", Int(&p.DeltaQPStep), "block level qp change step"},
		{"-encoder_speed", "0", Int(&p.EncoderSpeed), "speed preset"},
		{"-sync", "0", Int(&p.Sync), "synchronized encoding"},
		{"-deblocking", "1", Int(&p.Deblocking), "deblocking filter"},
		{"-cdef", "2", Int(&p.CDEF), "constrained directional enhancement filter (0 off, 1 slow, 2 medium, 3 fast)"},
		{"-clpf", "0", Int(&p.CLPF), "constrained low pass filter (0 off, 1 SB level, 2 frame level)"},
		{"-snrcalc", "1", Int(&p.SNRCalc), "compute PSNR"},
		{"-use_block_contexts", "0", Int(&p.UseBlockContexts), "block level entropy contexts"},
		{"-enable_bipred", "0", Int(&p.EnableBipred), "bi-prediction"},
		{"-bitrate", "0", Int(&p.Bitrate), "target bitrate, 0 for constant qp"},
		{"-max_qp", "51", Int(&p.MaxQP), "rate control maximum qp"},
		{"-min_qp", "1", Int(&p.MinQP), "rate control minimum qp"},
		{"-max_qpI", "32", Int(&p.MaxQPI), "rate control maximum qp for I frames"},
		{"-min_qpI", "32", Int(&p.MinQPI), "rate control minimum qp for I frames"},
		{"-qmtx", "0", Int(&p.QMtx), "quantization matrices"},
		{"-qmtx_offset", "0", Int(&p.QMtxOffset), "qp offset for the quantization matrix level (-32 to 31)"},
		{"-subsample", "420", Int(&p.Subsample), "chroma subsampling (420, 422, 444 or 400)"},
		{"-max_clpf_strength", "4", Int(&p.MaxCLPFStrength), "maximum low pass filter strength"},
		{"-enable_cfl_intra", "1", Int(&p.CFLIntra), "chroma from luma for intra blocks"},
		{"-enable_cfl_inter", "0", Int(&p.CFLInter), "chroma from luma for inter blocks"},
		{"-bitdepth", "8", Int(&p.BitDepth), "internal bit depth (8, 10 or 12)"},
		{"-frame_bitdepth", "8", Int(&p.FrameBitDepth), "frame buffer bit depth (8 or 16)"},
		{"-input_bitdepth", "8", Int(&p.InputBitDepth), "input bit depth (8, 10 or 12)"},
	}

	reg := NewRegistry(MaxParams)
	for _, r := range table {
		if err := reg.Register(r.name, r.def, r.dest, r.help); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
