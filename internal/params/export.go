package params

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
)

// MarshalTOML renders the record as a TOML document keyed by parameter name.
func MarshalTOML(p *Params) ([]byte, error) {
	data, err := toml.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "marshal parameters")
	}
	return data, nil
}

// MarshalJSON renders the record as indented JSON.
func MarshalJSON(p *Params) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "marshal parameters")
	}
	return data, nil
}

// WriteConfig writes the record as a configuration file that -cf reads back into
// the same record. Unset strings and cleared flags are left out.
func WriteConfig(w io.Writer, p *Params) error {
	// Bind a registry to a copy so formatting never aliases the caller's record.
	snapshot := *p
	reg, err := DefaultRegistry(&snapshot)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("; thor encoder parameters\n")
	for _, e := range reg.Entries() {
		value, ok := e.Value()
		if !ok {
			continue
		}

		switch e.Kind() {
		case KindFlag:
			bw.WriteString(e.Name + "\n")
		case KindString:
			if strings.ContainsAny(value, "\"\n") {
				return eris.Errorf("value of %s cannot be written to a config file: %q", e.Name, value)
			}
			bw.WriteString(e.Name + " \"" + value + "\"\n")
		default:
			bw.WriteString(e.Name + " " + value + "\n")
		}
	}
	return eris.Wrap(bw.Flush(), "write config")
}
