package params

const (
	// MaxRefFrames is the number of reference frame slots; HQperiod must stay below it.
	MaxRefFrames = 17

	// MinLog2SBSize and MaxLog2SBSize bound the super block size (64 and 128 pixels).
	MinLog2SBSize = 6
	MaxLog2SBSize = 7
)

// Validator checks cross-field constraints of a parsed record.
type Validator struct{}

// Validate runs the checks in order and returns the first failure. A record with
// dyadic coding and num_reorder_pics=2 is adjusted instead of rejected, which is
// reported as a warning. On success a bit depth above 8 forces 16 bit frame buffers.
func (Validator) Validate(p *Params) ([]string, error) {
	var warnings []string

	if p.NumFrames <= 0 {
		return nil, validationError("-n", "Number of frames must be positive")
	}
	if p.Width%8 != 0 || p.Height%8 != 0 {
		return nil, validationError("-width", "Width and height must be a multiple of 8")
	}
	if p.MaxNumRef < 1 || p.MaxNumRef > 4 {
		return nil, validationError("-max_num_ref", "This number of max reference frames is not supported")
	}
	if p.MaxDeltaQP >= 8 {
		return nil, validationError("-max_delta_qp", "max_delta_qp too large")
	}
	if p.HQPeriod >= MaxRefFrames {
		return nil, validationError("-HQperiod", "HQperiod too large")
	}
	if p.NumReorderPics < 0 {
		return nil, validationError("-num_reorder_pics", "num_reorder_pics must not be negative")
	}

	subgroup := p.NumReorderPics + 1
	if p.NumReorderPics > 0 && p.HQPeriod > 1 && p.HQPeriod%subgroup != 0 {
		return nil, validationError("-HQperiod", "Subgop length (num_reorder_pics+1) must divide HQperiod.")
	}

	if p.DyadicCoding != 0 {
		if p.NumReorderPics == 2 {
			p.DyadicCoding = 0
			warnings = append(warnings, "Dyadic coding disabled with num_reorder_pics=2")
		} else if subgroup&(subgroup-1) != 0 {
			return nil, validationError("-dyadic_coding", "num_reorder_pics+1 must be a power of 2 with dyadic coding.")
		}
	}

	if p.NumReorderPics > 0 && p.MaxNumRef < 2 {
		return nil, validationError("-max_num_ref", "More than one reference frame required for reordered pictures.")
	}
	if p.IntraPeriod%subgroup != 0 {
		return nil, validationError("-intra_period", "Intra period must be a multiple of the subgroup size (num_reorder_pics+1).")
	}
	if p.Sync != 0 && p.EncoderSpeed < 2 {
		return nil, validationError("-sync", "Sync requires encoder_speed=2")
	}
	if p.Bitrate > 0 && p.NumReorderPics > 0 {
		return nil, validationError("-bitrate", "Current rate control doesn't work with frame reordering")
	}
	if p.Log2SBSize < MinLog2SBSize || p.Log2SBSize > MaxLog2SBSize {
		return nil, validationError("-log2_sb_size", "Illegal value for log2_sb_size")
	}
	if p.QMtx != 0 && (p.QMtxOffset < -32 || p.QMtxOffset > 31) {
		return nil, validationError("-qmtx_offset", "qmtx_offset must be a value from -32 to 31")
	}
	if p.InterpRef == 2 && p.DyadicCoding == 0 && p.NumReorderPics != 2 {
		return nil, validationError("-interp_ref", "interp_ref=2 only supported with dyadic coding")
	}

	switch p.Subsample {
	case 400, 420, 422, 444:
	default:
		return nil, validationError("-subsample", "Illegal value for subsample.  Only 444, 422, 420 and 400 supported.")
	}
	if !validBitDepth(p.BitDepth) {
		return nil, validationError("-bitdepth", "Illegal value for bitdepth.  Only 8, 10 and 12 supported.")
	}
	if !validBitDepth(p.InputBitDepth) {
		return nil, validationError("-input_bitdepth", "Illegal value for input_bitdepth.  Only 8, 10 and 12 supported.")
	}

	if p.BitDepth > 8 {
		p.FrameBitDepth = 16
	}
	return warnings, nil
}

func validBitDepth(d int) bool {
	return d == 8 || d == 10 || d == 12
}
