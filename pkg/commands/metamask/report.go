package metamask

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// printReport writes v to the command output in the format selected by --format.
func printReport(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("format")

	return writeReport(cmd.OutOrStdout(), format, v)
}

func writeReport(w io.Writer, format string, v any) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case formatJSON:
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	case formatYAML:
		b, err = yaml.Marshal(v)
	case formatTOML:
		b, err = toml.Marshal(v)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s report: %w", format, err)
	}

	_, err = w.Write(b)

	return err
}
