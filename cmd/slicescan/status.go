package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/slicescan/internal/archive"
	"github.com/hupe1980/slicescan/status"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Inspect encoded and archived statuses",
	}
	cmd.AddCommand(newStatusDecodeCmd(), newStatusLatestCmd(), newStatusListCmd())
	return cmd
}

func newStatusDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a binary or archived status to text",
		Long:  "Decode reads a binary status, or a status blob written by the archive, from file or stdin and prints it as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fail(cmd, err)
			}

			s, err := decodeStatus(data)
			if err != nil {
				return fail(cmd, err)
			}
			if err := printStatus(cmd.OutOrStdout(), s); err != nil {
				return fail(cmd, err)
			}
			return nil
		},
	}
}

// decodeStatus accepts both the plain binary encoding and archive blobs.
func decodeStatus(data []byte) (status.Status, error) {
	s, err := status.Decode(data)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, status.ErrCorrupt) {
		return status.Status{}, err
	}
	if s, aerr := archive.DecodeBlob(data); aerr == nil {
		return s, nil
	}
	return status.Status{}, err
}

func newStatusLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest <scan-id>",
		Short: "Print the latest archived summary of a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(cmd)
			if err != nil {
				return fail(cmd, err)
			}
			s, key, err := a.Latest(cmd.Context(), args[0])
			if err != nil {
				return fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), paint(faint, key))
			if err := printStatus(cmd.OutOrStdout(), s); err != nil {
				return fail(cmd, err)
			}
			return nil
		},
	}
}

func newStatusListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <scan-id>",
		Short: "List the archived statuses of a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(cmd)
			if err != nil {
				return fail(cmd, err)
			}
			keys, err := a.List(cmd.Context(), args[0])
			if err != nil {
				return fail(cmd, err)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func openArchive(cmd *cobra.Command) (*archive.Archive, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cmd.Context(), cfg.Archive)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("no archive backend configured")
	}
	return archive.New(store, archive.WithLogger(newLogger(cfg.Logging, cmd.ErrOrStderr()).Logger)), nil
}
