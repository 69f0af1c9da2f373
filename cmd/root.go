package cmd

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/metasync/cmd/meta"
	"github.com/ValentinKolb/metasync/cmd/serve"
	"github.com/ValentinKolb/metasync/cmd/util"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "metasync",
		Short: "debounced persistence of per-scope settings",
		Long: fmt.Sprintf(`metasync (v%s)

Persists per-user, per-organization settings into a key-value store.
Changes are coalesced in memory and written in throttled batches,
merging field by field into the stored record.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of metasync",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("metasync v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper for all commands
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(meta.MetaCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer of the rpc transport (json, gob, binary)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
// Commands observe SIGINT and SIGTERM through their context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
