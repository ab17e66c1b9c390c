package params

import (
	"errors"
	"maps"
	"time"

	"github.com/Tubbz-alt/thor/internal/events"
	"github.com/Tubbz-alt/thor/internal/lexer"
	"github.com/Tubbz-alt/thor/internal/logging"
	"github.com/Tubbz-alt/thor/internal/y4m"
)

// Provenance labels. Values read from a configuration file are labelled with the
// canonical path of that file.
const (
	SourceDefault   = "default"
	SourceArgs      = "args"
	SourceContainer = "container"
)

// RegistryFunc builds the parameter table bound to a record.
type RegistryFunc func(p *Params) (*Registry, error)

// Options configures a Session.
type Options struct {
	// Logger for parse and validation messages. If nil, uses the "params" module logger.
	Logger logging.Logger

	// Bus receives include, header and completion events (optional).
	Bus *events.Bus

	// MaxIncludeDepth bounds -cf nesting. Zero selects DefaultMaxIncludeDepth.
	MaxIncludeDepth int

	// MaxTokens bounds the tokens read from one configuration file. Zero selects
	// lexer.DefaultMaxTokens.
	MaxTokens int

	// IncludeRoot confines -cf files and the probed input file to one directory
	// tree. Relative paths are taken from it. Empty leaves paths unrestricted and
	// relative to the working directory.
	IncludeRoot string

	// SkipProbe disables the YUV4MPEG2 header override of the input file.
	SkipProbe bool

	// Source names the caller in completion events, e.g. "cli" or "api".
	Source string

	// Registry replaces DefaultRegistry (optional).
	Registry RegistryFunc
}

// Result is a resolved and validated parameter set.
type Result struct {
	Params   *Params
	Warnings []string
	Origins  map[string]string
	Includes []string
	Header   *y4m.Header
}

// Session resolves one parameter set. It is not safe for concurrent use; create one
// session per request.
type Session struct {
	opts     Options
	logger   logging.Logger
	origins  map[string]string
	includes []string
	warnings []string
	header   *y4m.Header
}

// NewSession creates a session with the given options.
func NewSession(opts Options) *Session {
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = lexer.DefaultMaxTokens
	}
	if opts.Source == "" {
		opts.Source = "cli"
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger("params")
	}

	return &Session{opts: opts, logger: logger}
}

// Parse builds a parameter record from the registry defaults, then args, then the
// stream header of the input file. It stops at the first error.
func (s *Session) Parse(args []string) (*Params, error) {
	s.origins, s.includes, s.warnings, s.header = nil, nil, nil, nil

	p := newParams()
	reg, err := s.opts.Registry(p)
	if err != nil {
		return nil, err
	}

	ps := newParser(reg, s.logger, s.opts.Bus, s.opts)
	defer func() {
		s.origins = ps.origins
		s.includes = ps.includes
		s.warnings = ps.warnings
	}()

	if err := ps.parse(reg.defaultTokens(), SourceDefault); err != nil {
		return nil, err
	}
	if err := ps.parse(args, SourceArgs); err != nil {
		return nil, err
	}

	if !s.opts.SkipProbe {
		if err := s.applyContainer(p, ps); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Resolve parses args and validates the result.
func (s *Session) Resolve(args []string) (*Result, error) {
	start := time.Now()

	p, err := s.Parse(args)
	var warnings []string
	if err == nil {
		warnings, err = Validator{}.Validate(p)
	}

	for _, w := range warnings {
		s.logger.Warn(w)
		if s.opts.Bus != nil {
			s.opts.Bus.Publish(events.ValidationWarningEvent{Message: w})
		}
	}
	s.warnings = append(s.warnings, warnings...)
	s.complete(start, err)

	if err != nil {
		return nil, err
	}
	return &Result{
		Params:   p,
		Warnings: s.warnings,
		Origins:  s.Origins(),
		Includes: s.includes,
		Header:   s.header,
	}, nil
}

func (s *Session) complete(start time.Time, err error) {
	ev := events.SessionCompletedEvent{
		Source:    s.opts.Source,
		Success:   err == nil,
		Warnings:  len(s.warnings),
		Includes:  len(s.includes),
		Container: s.header != nil,
		Seconds:   time.Since(start).Seconds(),
	}

	var perr *Error
	if errors.As(err, &perr) {
		ev.Tier = string(perr.Tier)
		ev.Code = perr.Code
		ev.Error = perr.Redacted()
	} else if err != nil {
		ev.Error = err.Error()
	}

	if err != nil {
		s.logger.Debug("Parameter session failed", "source", ev.Source, "code", ev.Code, "error", ev.Error)
	} else {
		s.logger.Debug("Parameter session resolved", "source", ev.Source, "includes", ev.Includes, "warnings", ev.Warnings)
	}

	if s.opts.Bus != nil {
		s.opts.Bus.Publish(ev)
	}
}

// Origin returns where the last Parse took the value of name from, or "" when the
// parameter was never assigned.
func (s *Session) Origin(name string) string {
	return s.origins[name]
}

// Origins returns the provenance of every assigned parameter.
func (s *Session) Origins() map[string]string {
	return maps.Clone(s.origins)
}

// Includes returns the canonical paths of the configuration files read, in order.
func (s *Session) Includes() []string {
	return append([]string(nil), s.includes...)
}

// Warnings returns the warnings of the last Parse or Resolve.
func (s *Session) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

func (s *Session) applyContainer(p *Params, ps *parser) error {
	path, err := ps.confine(p.InFile, "-if")
	if err != nil {
		return err
	}

	h, err := y4m.Probe(path)
	switch {
	case errors.Is(err, y4m.ErrInterlaced):
		return parseError(ErrCodeInterlacedInput, "-if", "Only progressive input supported", nil)
	case errors.Is(err, y4m.ErrCorrupt):
		return parseError(ErrCodeCorruptContainer, "-if", "Corrupt Y4M file", nil)
	case err != nil:
		return parseError(ErrCodeContainerRead, "-if", "Cannot read input file: "+p.InFile, err)
	case h == nil:
		return nil
	}

	set := func(name string) { ps.origins[name] = SourceContainer }
	if h.Has(y4m.FieldWidth) {
		p.Width = h.Width
		set("-width")
	}
	if h.Has(y4m.FieldHeight) {
		p.Height = h.Height
		set("-height")
	}
	if h.Has(y4m.FieldFrameRate) {
		p.FrameRate = h.FrameRate
		set("-f")
	}
	if h.Has(y4m.FieldAspect) {
		p.AspectNum, p.AspectDen = h.AspectNum, h.AspectDen
	}
	if h.Has(y4m.FieldColorspace) {
		p.Subsample = h.Subsample
		set("-subsample")
	}
	if h.Has(y4m.FieldBitDepth) {
		p.InputBitDepth = h.BitDepth
		set("-input_bitdepth")
		if h.BitDepth > 8 {
			p.FrameBitDepth = 16
			set("-frame_bitdepth")
		}
	}
	p.FileHeaderLen = h.HeaderLen
	p.FrameHeaderLen = h.FrameHeaderLen
	set("-ph")
	set("-fh")

	s.header = h
	s.logger.Debug("Applied YUV4MPEG2 header", "path", p.InFile, "width", p.Width, "height", p.Height, "frame_rate", p.FrameRate)
	if s.opts.Bus != nil {
		s.opts.Bus.Publish(events.HeaderProbedEvent{
			Path:      p.InFile,
			Width:     p.Width,
			Height:    p.Height,
			FrameRate: p.FrameRate,
			Subsample: p.Subsample,
		})
	}
	return nil
}
