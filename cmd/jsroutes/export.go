package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitalvas/jsroutes/exporter"
	"github.com/vitalvas/jsroutes/loader"
	"github.com/vitalvas/jsroutes/reverse"
	"gopkg.in/yaml.v3"
)

func (a *app) exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Convert regular-expression routes into a route table",
		Long: `Convert a JSON or YAML document mapping route names to regular
expressions (^articles/(?P<id>\d+)/$) into a route table of token
patterns (/articles/<id>/).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patterns map[string]string
			if err := (loader.FileSource{Path: args[0]}).Load(cmd.Context(), &patterns); err != nil {
				return err
			}

			table, err := convertRegexps(patterns)
			if err != nil {
				return err
			}
			a.logger.Debug("converted routes", "routes", table.Len())

			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(table.Map(), "", "  ")
				out = append(out, '\n')
			case "yaml":
				out, err = yaml.Marshal(table.Map())
			default:
				return fmt.Errorf("unknown format %q: use json or yaml", format)
			}
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json or yaml)")

	return cmd
}

// convertRegexps converts every pattern and validates the result as a
// route table.
func convertRegexps(patterns map[string]string) (*reverse.Table, error) {
	routes := make(map[string]string, len(patterns))
	for name, pattern := range patterns {
		routes[name] = exporter.TemplateFromRegexp(pattern)
	}
	return reverse.NewTable(routes)
}
