package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lypee/flakeid"
	"github.com/lypee/flakeid/base"
	"github.com/lypee/flakeid/common"
	"github.com/lypee/flakeid/server/zkServer"
)

func (a *app) newCreateCommand() *cobra.Command {
	var (
		count    int
		encoding string
		unsafe   bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create snowflakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := flakeid.ParseEncoding(encoding)
			if err != nil {
				return err
			}
			if count <= 0 {
				return common.OpErr.WithMsg("count must be positive, got %d", count)
			}

			var extra []flakeid.OptFunc
			if a.cfg.Zookeeper.Enabled {
				srv, err := zkServer.NewZkServer(make(chan error, 3), a.zkOptions()...)
				if err != nil {
					return err
				}
				defer srv.Shutdown()
				layout, err := a.layout()
				if err != nil {
					return err
				}
				workerID, err := srv.AcquireWorkerID(int(layout.WorkerIDMask()))
				if err != nil {
					return err
				}
				base.InfoF("leased worker id %d", workerID)
				extra = append(extra, flakeid.WithWorkerID(workerID))
			}

			f, err := a.cfg.NewFactory(extra...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := 0; i < count; i++ {
				var s flakeid.Snowflake
				if unsafe {
					s, err = f.Create()
				} else {
					s, err = f.CreateSafe(cmd.Context())
				}
				if err != nil {
					return err
				}
				text, err := s.Encode(enc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of ids to create")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", string(flakeid.EncodingDecimal), "decimal, hex, base62 or base64")
	cmd.Flags().BoolVar(&unsafe, "unsafe", false, "fail on increment overflow instead of waiting for the next millisecond")
	return cmd
}
