package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lypee/flakeid/base"
	"github.com/lypee/flakeid/server/zkServer"
)

func (a *app) newLeaseCommand() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "lease",
		Short: "Hold a worker id in ZooKeeper until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			errCh := make(chan error, 3)
			srv, err := zkServer.NewZkServer(errCh, a.zkOptions()...)
			if err != nil {
				return err
			}
			defer srv.Shutdown()

			out := cmd.OutOrStdout()
			if list {
				ids, err := srv.ListWorkerIDs()
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			layout, err := a.layout()
			if err != nil {
				return err
			}
			workerID, err := srv.AcquireWorkerID(int(layout.WorkerIDMask()))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, workerID)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			select {
			case s := <-sigCh:
				base.InfoF("receive signal %v", s)
				return nil
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print leased worker ids and exit")
	return cmd
}
