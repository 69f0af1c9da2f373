package meta

import (
	"github.com/ValentinKolb/metasync/cmd/util"
	"github.com/ValentinKolb/metasync/lib/metastore"
	"github.com/ValentinKolb/metasync/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	metaStore *metastore.KVMetaStore

	// MetaCommands represents the meta command group
	MetaCommands = &cobra.Command{
		Use:                "meta",
		Short:              "Read and write per-scope settings records",
		PersistentPreRunE:  openStore,
		PersistentPostRunE: closeStore,
	}
)

func init() {
	// Add store selection and RPC flags to the meta command
	util.SetupStoreFlags(MetaCommands)
	util.SetupRPCClientFlags(MetaCommands)

	// Add subcommands
	MetaCommands.AddCommand(getCmd)
	MetaCommands.AddCommand(setCmd)
	MetaCommands.AddCommand(dumpCmd)
	MetaCommands.AddCommand(benchCmd)
}

// openStore opens the meta store selected by the flags
func openStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	var err error
	metaStore, err = util.OpenMetaStore()
	return err
}

func closeStore(_ *cobra.Command, _ []string) error {
	if metaStore == nil {
		return nil
	}
	return metaStore.Close()
}
