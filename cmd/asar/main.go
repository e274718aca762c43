// Command asar packs, lists and extracts asar archives.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	asar "github.com/hack3ric/hive-asar"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "asar:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "asar",
		Short:         "Pack, list and extract asar archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	logger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(
		newPackCmd(logger),
		newExtractCmd(logger),
		newListCmd(),
		newCatCmd(),
	)
	return root
}

func newPackCmd(logger func() *slog.Logger) *cobra.Command {
	var withIntegrity bool

	cmd := &cobra.Command{
		Use:   "pack <dir> <archive>",
		Short: "Pack a directory into an archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, dest := args[0], args[1]

			out, err := os.Create(dest)
			if err != nil {
				return err
			}

			opts := []asar.WriterOption{asar.WithWriterLogger(logger())}
			if withIntegrity {
				opts = append(opts, asar.WithIntegrity())
			}
			if err := asar.PackDir(cmd.Context(), dir, out, opts...); err != nil {
				out.Close()
				os.Remove(dest)
				return err
			}
			return out.Close()
		},
	}
	cmd.Flags().BoolVar(&withIntegrity, "integrity", false, "compute SHA-256 integrity hashes")
	return cmd
}

func newExtractCmd(logger func() *slog.Logger) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "extract <archive> <dir>",
		Short: "Extract an archive into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := asar.OpenFile(args[0], asar.WithLogger(logger()))
			if err != nil {
				return err
			}
			defer a.Close()
			return a.ExtractTo(cmd.Context(), args[1], asar.WithExtractConcurrency(concurrency))
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel member reads")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive>",
		Short: "List archive members in header order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := asar.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer a.Close()
			return listDir(cmd.OutOrStdout(), a.Archive, "")
		},
	}
}

func listDir(w io.Writer, a *asar.Archive, path string) error {
	entries, err := a.List(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		child := e.Name
		if path != "" {
			child = path + "/" + e.Name
		}
		switch meta := e.Entry.(type) {
		case *asar.Directory:
			fmt.Fprintf(w, "%s/\n", child)
			if err := listDir(w, a, child); err != nil {
				return err
			}
		case *asar.FileMetadata:
			fmt.Fprintf(w, "%s\t%d\n", child, meta.Size)
		}
	}
	return nil
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <archive> <path>",
		Short: "Write one member to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := asar.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.OpenStream(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(cmd.OutOrStdout(), f)
			return err
		},
	}
}
