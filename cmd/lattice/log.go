package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/platform"
	"github.com/aretw0/lattice/pkg/core"
)

var (
	dumpKey     string
	dumpNoColor bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the transaction log",
}

var logDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every logged transaction in order",
	Long: `Print the log configured in the config file, one transaction per line.
--key filters by a glob over dot paths, where * matches one segment and
** any number of segments (e.g. "user.**.name").`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var pattern string
		if dumpKey != "" {
			pattern = dotsToSlashes(dumpKey)
			if !doublestar.ValidatePattern(pattern) {
				fatal("Invalid key pattern", fmt.Errorf("%q", dumpKey))
			}
		}

		l, err := platform.OpenLog(cfg, slog.Default())
		if err != nil {
			fatal("Failed to open log", err)
		}
		defer l.Close()

		if dumpNoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}

		n := 0
		for tx, err := range l.Replay(cmd.Context()) {
			if err != nil {
				fatal(fmt.Sprintf("Log unreadable after %d records", n), err)
			}
			n++
			if pattern != "" && !matchKey(pattern, core.Flatten(tx).Key) {
				continue
			}
			printRecord(os.Stdout, n, tx)
		}
		slog.Debug("log dumped", "records", n, "path", cfg.StoragePath)
	},
}

func dotsToSlashes(key string) string {
	return strings.ReplaceAll(key, ".", "/")
}

func matchKey(pattern, key string) bool {
	if key == "" {
		return false
	}
	ok, _ := doublestar.Match(pattern, dotsToSlashes(key))
	return ok
}

var (
	seqColor   = color.New(color.FgHiBlack).SprintFunc()
	writeColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	readColor  = color.New(color.FgCyan).SprintFunc()
	keyColor   = color.New(color.FgYellow).SprintFunc()
)

func printRecord(w io.Writer, seq int, tx core.Transaction) {
	cmd := tx.Command().String()
	if tx.Command().IsWrite() {
		cmd = writeColor(cmd)
	} else {
		cmd = readColor(cmd)
	}

	switch tx := tx.(type) {
	case core.Create:
		fmt.Fprintf(w, "%s %s\n", seqColor(seq), cmd)
	case core.Set:
		fmt.Fprintf(w, "%s %s %d %s %q\n", seqColor(seq), cmd, tx.Object, keyColor(tx.Key), tx.Value)
	case core.Link:
		fmt.Fprintf(w, "%s %s %d %s -> %d\n", seqColor(seq), cmd, tx.Object, keyColor(tx.Key), tx.Other)
	case core.Get:
		fmt.Fprintf(w, "%s %s %d %s\n", seqColor(seq), cmd, tx.Object, keyColor(tx.Key))
	case core.GetRaw:
		fmt.Fprintf(w, "%s %s %d %s\n", seqColor(seq), cmd, tx.Object, keyColor(tx.Key))
	}
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logDumpCmd)
	logDumpCmd.Flags().StringVarP(&dumpKey, "key", "k", "", "Only show records whose key matches this glob")
	logDumpCmd.Flags().BoolVar(&dumpNoColor, "no-color", false, "Disable colored output")
}
