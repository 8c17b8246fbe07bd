package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// writeValue prints an evaluation result as indented JSON or as YAML.
func writeValue(w io.Writer, v cty.Value, format string) error {
	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	switch format {
	case "yaml":
		out, err := yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("failed to convert result to YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}
		buf.WriteByte('\n')
		_, err = w.Write(buf.Bytes())
		return err
	}
}
