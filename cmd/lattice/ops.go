package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/pkg/client"
)

var getRaw bool

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty entity and print its id",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withClient(cmd, func(ctx context.Context, c *client.Client) error {
			id, err := c.Create(ctx)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set [object] [key] [value]",
	Short: "Set a string value at a dot path",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		obj := parseID(args[0])
		withClient(cmd, func(ctx context.Context, c *client.Client) error {
			resp, err := c.Set(ctx, obj, args[1], args[2])
			if err != nil {
				return err
			}
			printResponse(resp)
			return nil
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get [object] [key]",
	Short: "Read a value or render an entity as JSON",
	Long: `Resolve a dot path from an object. Scalars print as-is, entities as JSON.
With --raw nested entities are printed as their ids instead of being expanded.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		obj := parseID(args[0])
		key := ""
		if len(args) == 2 {
			key = args[1]
		}
		withClient(cmd, func(ctx context.Context, c *client.Client) error {
			get := c.Get
			if getRaw {
				get = c.GetRaw
			}
			resp, err := get(ctx, obj, key)
			if err != nil {
				return err
			}
			printResponse(resp)
			return nil
		})
	},
}

var linkCmd = &cobra.Command{
	Use:   "link [object] [key] [other]",
	Short: "Point a property at another entity",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		obj, other := parseID(args[0]), parseID(args[2])
		withClient(cmd, func(ctx context.Context, c *client.Client) error {
			resp, err := c.Link(ctx, obj, args[1], other)
			if err != nil {
				return err
			}
			printResponse(resp)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Store a JSON document as a sub-graph and print the root id",
	Long:  `Import a JSON object or array. Use "-" to read from stdin.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				fatal("Failed to open file", err)
			}
			defer f.Close()
			r = f
		}
		withClient(cmd, func(ctx context.Context, c *client.Client) error {
			id, err := c.ImportJSON(ctx, r)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createCmd, setCmd, getCmd, linkCmd, importCmd)
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "Do not expand nested entities")
}
