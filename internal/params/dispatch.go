package params

import (
	"fmt"
	"strings"

	"github.com/Tubbz-alt/thor/internal/events"
	"github.com/Tubbz-alt/thor/internal/lenient"
	"github.com/Tubbz-alt/thor/internal/logging"
)

// parser applies token streams to the destinations of a registry. One parser serves
// one session: the defaults, the argument list and every file pulled in by -cf.
type parser struct {
	reg       *Registry
	logger    logging.Logger
	bus       *events.Bus
	maxDepth  int
	maxTokens int
	root      string // canonical include root, empty when unrestricted

	origins  map[string]string
	chain    []string // canonical paths of the files currently being read
	includes []string
	warnings []string
}

func newParser(reg *Registry, logger logging.Logger, bus *events.Bus, opts Options) *parser {
	ps := &parser{
		reg:       reg,
		logger:    logger,
		bus:       bus,
		maxDepth:  opts.MaxIncludeDepth,
		maxTokens: opts.MaxTokens,
		origins:   make(map[string]string),
	}
	if opts.IncludeRoot != "" {
		ps.root = canonicalPath(opts.IncludeRoot)
	}
	return ps
}

// parse walks tokens as name/value pairs. source labels every value written.
func (ps *parser) parse(tokens []string, source string) error {
	for i := 0; i < len(tokens); i++ {
		name := tokens[i]
		entry, ok := ps.reg.Lookup(name)
		if !ok {
			return inFile(parseError(ErrCodeUnknownParameter, name, fmt.Sprintf("Unknown parameter: %s", name), nil), source)
		}

		if d, isFlag := entry.dest.(flagDest); isFlag {
			*d.p = true
			ps.origins[name] = source
			continue
		}

		i++
		if i == len(tokens) {
			return inFile(missingValue(entry), source)
		}
		if err := ps.assign(entry, tokens[i], source); err != nil {
			return err
		}
	}
	return nil
}

func (ps *parser) assign(entry Entry, value, source string) error {
	switch d := entry.dest.(type) {
	case includeDest:
		return ps.include(value)
	case stringDest:
		*d.p = value
	case intDest:
		v, clean := lenient.Atoi(value)
		if !clean {
			ps.warnf("Value %q for parameter %s is not a plain integer, using %d", value, entry.Name, v)
		}
		*d.p = v
	case floatDest:
		v, clean := lenient.Atof(value)
		if !clean {
			ps.warnf("Value %q for parameter %s is not a plain number, using %g", value, entry.Name, v)
		}
		*d.p = v
	case listDest:
		list, err := ps.parseList(entry.Name, value)
		if err != nil {
			return err
		}
		*d.p = list
	}
	ps.origins[entry.Name] = source
	return nil
}

func (ps *parser) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	ps.warnings = append(ps.warnings, msg)
	ps.logger.Warn(msg)
}

// parseList splits a list value on commas and spaces. Empty fields are skipped.
func (ps *parser) parseList(name, value string) (IntList, error) {
	var list IntList
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return list, parseError(ErrCodeInvalidList, name,
			fmt.Sprintf("Error reading integer list for parameter: %s", name), nil)
	}
	if len(fields) > IntListCapacity {
		return list, parseError(ErrCodeInvalidList, name,
			fmt.Sprintf("Too many values in integer list for parameter: %s (at most %d)", name, IntListCapacity), nil)
	}

	for i, f := range fields {
		v, clean := lenient.Atoi(f)
		if !clean {
			ps.warnf("Value %q in list for parameter %s is not a plain integer, using %d", f, name, v)
		}
		list[i+1] = v
	}
	list[0] = len(fields)
	return list, nil
}

// inFile records the configuration file an error was raised in. source is a
// canonical path for every token stream except the defaults and the arguments.
func inFile(err *Error, source string) *Error {
	if source != SourceDefault && source != SourceArgs {
		err.File = source
	}
	return err
}

func missingValue(entry Entry) *Error {
	var msg string
	switch entry.dest.(type) {
	case stringDest, includeDest:
		msg = "No filename found for parameter: %s"
	case listDest:
		msg = "No integer list found for parameter: %s"
	default:
		msg = "No value found for parameter: %s"
	}
	return parseError(ErrCodeMissingValue, entry.Name, fmt.Sprintf(msg, entry.Name), nil)
}
