package events

// Event type constants for kelindar/event.
const (
	TypeIncludeEntered uint32 = iota + 1
	TypeHeaderProbed
	TypeValidationWarning
	TypeSessionCompleted
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// IncludeEnteredEvent is published when a nested configuration file is read.
type IncludeEnteredEvent struct {
	Path   string `json:"path" example:"/etc/thor/low_delay.cfg" doc:"Canonical path of the included file"`
	Depth  int    `json:"depth" example:"1" doc:"Include depth, 1 for files named on the command line"`
	Tokens int    `json:"tokens" example:"24" doc:"Number of tokens read from the file"`
}

// Type returns the event type identifier for IncludeEnteredEvent.
func (e IncludeEnteredEvent) Type() uint32 { return TypeIncludeEntered }

// HeaderProbedEvent is published when the input file carried a YUV4MPEG2 header
// that overrode the configured geometry.
type HeaderProbedEvent struct {
	Path      string  `json:"path" example:"foreman_cif.y4m" doc:"Input file"`
	Width     int     `json:"width" example:"352" doc:"Frame width from the header"`
	Height    int     `json:"height" example:"288" doc:"Frame height from the header"`
	FrameRate float64 `json:"frame_rate" example:"30" doc:"Frame rate from the header"`
	Subsample int     `json:"subsample" example:"420" doc:"Chroma subsampling from the header"`
}

// Type returns the event type identifier for HeaderProbedEvent.
func (e HeaderProbedEvent) Type() uint32 { return TypeHeaderProbed }

// ValidationWarningEvent is published when validation adjusted a parameter instead
// of rejecting the parameter set.
type ValidationWarningEvent struct {
	Message string `json:"message" example:"Dyadic coding disabled with num_reorder_pics=2" doc:"Warning text"`
}

// Type returns the event type identifier for ValidationWarningEvent.
func (e ValidationWarningEvent) Type() uint32 { return TypeValidationWarning }

// SessionCompletedEvent is published once per resolved parameter set.
type SessionCompletedEvent struct {
	Source    string  `json:"source" example:"cli" doc:"Who requested the session (cli, api, lint, watch)"`
	Success   bool    `json:"success" example:"true" doc:"Whether parsing and validation passed"`
	Tier      string  `json:"tier,omitempty" example:"validation" doc:"Failure tier: parse or validation"`
	Code      string  `json:"code,omitempty" example:"INVALID_PARAMETERS" doc:"Failure code"`
	Error     string  `json:"error,omitempty" doc:"Failure message"`
	Warnings  int     `json:"warnings" example:"0" doc:"Number of validation warnings"`
	Includes  int     `json:"includes" example:"2" doc:"Number of configuration files read"`
	Container bool    `json:"container" example:"false" doc:"Whether a YUV4MPEG2 header was applied"`
	Seconds   float64 `json:"seconds" example:"0.0012" doc:"Wall time of the session"`
}

// Type returns the event type identifier for SessionCompletedEvent.
func (e SessionCompletedEvent) Type() uint32 { return TypeSessionCompleted }
