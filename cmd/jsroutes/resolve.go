package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vitalvas/jsroutes/reverse"
)

var (
	errMixedArgs   = errors.New("positional values and --kw cannot be combined")
	errInvalidPair = errors.New("keyed value must be key=value")
)

func (a *app) resolveCmd() *cobra.Command {
	var (
		keyed    []string
		absolute bool
		site     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve NAME [VALUE...]",
		Short: "Resolve a route name to a URL",
		Long: `Resolve a route name to a URL.

Values given after the name fill the tokens by position. Use --kw to
fill named tokens by key instead:

  jsroutes resolve test_arg_multi 12 a
  jsroutes resolve test_named_multi --kw str=x --kw num=12`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			routeArgs, err := buildArgs(args[1:], keyed)
			if err != nil {
				return err
			}

			res, err := a.loadResolver(cmd.Context())
			if err != nil {
				return err
			}

			var url string
			switch {
			case absolute:
				url, err = res.Absolute(args[0], routeArgs)
			case site:
				url, err = res.Site(args[0], routeArgs)
			default:
				url, err = res.Resolve(args[0], routeArgs)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&keyed, "kw", "k", nil, "keyed value as key=value (repeatable)")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "prefix the URL with ABSOLUTE_ROOT from the context")
	cmd.Flags().BoolVar(&site, "site", false, "prefix the URL with SITE_ROOT from the context")
	cmd.MarkFlagsMutuallyExclusive("absolute", "site")

	return cmd
}

func (a *app) staticCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "static FILENAME",
		Short: "Prefix a filename with STATIC_URL from the context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := a.loadContext(cmd.Context())
			if err != nil {
				return err
			}

			res := reverse.New(reverse.WithContext(blob))
			fmt.Fprintln(cmd.OutOrStdout(), res.Static(args[0]))
			return nil
		},
	}
}

// buildArgs turns command line values into resolver arguments.
func buildArgs(values, pairs []string) (reverse.Args, error) {
	if len(values) > 0 && len(pairs) > 0 {
		return reverse.NoArgs(), errMixedArgs
	}

	if len(pairs) > 0 {
		keyed := make(map[string]any, len(pairs))
		for _, pair := range pairs {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return reverse.NoArgs(), fmt.Errorf("%w: %q", errInvalidPair, pair)
			}
			keyed[key] = value
		}
		return reverse.Keyed(keyed), nil
	}

	if len(values) == 0 {
		return reverse.NoArgs(), nil
	}

	positional := make([]any, len(values))
	for i, v := range values {
		positional[i] = v
	}
	return reverse.Positional(positional...), nil
}
