package main

import (
	"github.com/spf13/cobra"

	"github.com/lypee/flakeid"
	"github.com/lypee/flakeid/base"
	"github.com/lypee/flakeid/config"
	"github.com/lypee/flakeid/server/zkServer"
)

type app struct {
	configDir  string
	configName string
	cfg        *config.Config
}

// NewRoot builds the flakeid command tree.
func NewRoot() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "flakeid",
		Short:        "Create and parse 64-bit snowflake ids",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configDir, a.configName)
			if err != nil {
				return err
			}
			base.Init(cfg.Log)
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config", "conf", "directory holding the config file")
	root.PersistentFlags().StringVar(&a.configName, "config-name", "conf", "config file name without extension")

	root.AddCommand(a.newCreateCommand())
	root.AddCommand(a.newParseCommand())
	root.AddCommand(a.newInspectCommand())
	root.AddCommand(a.newLeaseCommand())
	return root
}

func (a *app) zkOptions() []zkServer.ConnOptFunc {
	zc := a.cfg.Zookeeper
	return []zkServer.ConnOptFunc{
		zkServer.WithServers(zc.Servers...),
		zkServer.WithSessionTimeout(zc.SessionTimeout),
		zkServer.WithRoot(zc.Root),
		zkServer.WithMaxProbes(zc.MaxProbes),
	}
}

// layout is the configured bit split, used when parsing without a Factory.
func (a *app) layout() (flakeid.Layout, error) {
	return flakeid.NewLayout(a.cfg.Snowflake.ServerIDBits, a.cfg.Snowflake.WorkerIDBits)
}
