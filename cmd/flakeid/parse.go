package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lypee/flakeid"
)

func (a *app) parseArg(value, encoding string) (flakeid.Layout, flakeid.Snowflake, error) {
	layout, err := a.layout()
	if err != nil {
		return layout, flakeid.Snowflake{}, err
	}
	enc, err := flakeid.ParseEncoding(encoding)
	if err != nil {
		return layout, flakeid.Snowflake{}, err
	}
	s, err := layout.ParseString(value, enc)
	return layout, s, err
}

func printFields(w io.Writer, s flakeid.Snowflake) {
	fmt.Fprintf(w, "timestamp: %d\n", s.Timestamp)
	fmt.Fprintf(w, "time:      %s\n", s.Time().Format(time.RFC3339Nano))
	fmt.Fprintf(w, "server_id: %d\n", s.ServerID)
	fmt.Fprintf(w, "worker_id: %d\n", s.WorkerID)
	fmt.Fprintf(w, "increment: %d\n", s.Increment)
	fmt.Fprintf(w, "decimal:   %s\n", s.Decimal())
	fmt.Fprintf(w, "hex:       %s\n", s.Hex())
	fmt.Fprintf(w, "base62:    %s\n", s.Base62())
	fmt.Fprintf(w, "base64:    %s\n", s.Base64())
}

func (a *app) newParseCommand() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "parse <id>",
		Short: "Decode a snowflake into its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.parseArg(args[0], encoding)
			if err != nil {
				return err
			}
			printFields(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", string(flakeid.EncodingDecimal), "decimal, hex, base62 or base64")
	return cmd
}

func (a *app) newInspectCommand() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Show the bit layout of a snowflake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, s, err := a.parseArg(args[0], encoding)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printFields(out, s)
			fmt.Fprint(out, layout.Describe(s))
			return nil
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", string(flakeid.EncodingDecimal), "decimal, hex, base62 or base64")
	return cmd
}
