// Package main implements the routes CLI, which inspects and validates the
// dashboard menu: the built-in one, or a YAML file given with --menu.
//
// Usage:
//
//	routes list
//	routes find /stocks/list
//	routes parent /stocks/list
//	routes resolve /unknown
//	routes validate --menu menu.yaml
//	routes dump > menu.yaml
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aristath/stockboard/internal/modules/menu"
)

type options struct {
	menuPath string
	asJSON   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "routes",
		Short:         "Inspect the dashboard menu and route table",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.menuPath, "menu", os.Getenv("MENU_CONFIG"), "YAML menu file (default: built-in menu)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")

	root.AddCommand(
		newListCmd(opts),
		newFindCmd(opts),
		newParentCmd(opts),
		newResolveCmd(opts),
		newValidateCmd(opts),
		newDumpCmd(opts),
	)
	return root
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every routable path and its view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := menu.Load(opts.menuPath)
			if err != nil {
				return err
			}
			routes := tree.Routes()
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), routes)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tCOMPONENT")
			for _, r := range routes {
				fmt.Fprintf(tw, "%s\t%s\n", r.Path, r.Component)
			}
			return tw.Flush()
		},
	}
}

func newFindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "find <path>",
		Short: "Show the menu node registered at a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := menu.Load(opts.menuPath)
			if err != nil {
				return err
			}
			node, ok := tree.FindNodeByPath(args[0])
			if !ok {
				return fmt.Errorf("no menu node at %s", args[0])
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), node)
			}
			printNode(cmd.OutOrStdout(), node)
			return nil
		},
	}
}

func newParentCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parent <path>",
		Short: "Show the top-level section containing a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := menu.Load(opts.menuPath)
			if err != nil {
				return err
			}
			node, ok := tree.FindParentByPath(args[0])
			if !ok {
				return fmt.Errorf("%s has no parent section", args[0])
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), node)
			}
			printNode(cmd.OutOrStdout(), node)
			return nil
		},
	}
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path to the view that renders it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := menu.Load(opts.menuPath)
			if err != nil {
				return err
			}
			res := tree.Resolve(args[0])
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "path:      %s\ncomponent: %s\nparent:    %s\nfound:     %t\n",
				res.Path, res.Component, res.Parent, res.Found)
			return nil
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the menu for duplicate paths and malformed nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := menu.Load(opts.menuPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d sections, %d routes\n", len(tree.Roots()), len(tree.Routes()))
			return nil
		},
	}
}

func newDumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the menu as YAML, suitable for --menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file menu.File
			if opts.menuPath == "" {
				file = menu.File{Main: menu.MainMenu(), Admin: menu.AdminMenu()}
			} else {
				data, err := os.ReadFile(opts.menuPath)
				if err != nil {
					return err
				}
				if _, err := menu.Parse(data); err != nil {
					return err
				}
				if err := yaml.Unmarshal(data, &file); err != nil {
					return err
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(file); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func printNode(w io.Writer, n menu.Node) {
	fmt.Fprintf(w, "key:       %s\nlabel:     %s\npath:      %s\ncomponent: %s\n", n.Key, n.Label, n.Path, n.Component)
	for _, c := range n.Children {
		fmt.Fprintf(w, "  - %s (%s)\n", c.Path, c.Label)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
