package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	return newRootCommandWith(newViper())
}

func newRootCommandWith(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "membuf",
		Short:         "Pool of resizable in-memory buffers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.Int("max-resources", v.GetInt("max-resources"), "number of buffer slots")
	flags.Int("default-size", v.GetInt("default-size"), "size in bytes of newly created buffers")
	flags.Int("count", v.GetInt("count"), "number of buffers created at startup")
	flags.Int("max-size", v.GetInt("max-size"), "largest size a buffer may be resized to")
	flags.Int64("memory-limit", v.GetInt64("memory-limit"), "bytes held by all buffers, 0 for unlimited")
	flags.Int64("io-limit", v.GetInt64("io-limit"), "read and write bytes per second, 0 for unlimited")
	flags.String("backend", v.GetString("backend"), "buffer storage: heap or mmap")
	flags.Int("max-open-handles", v.GetInt("max-open-handles"), "open handle bound, 0 for unbounded")
	flags.String("log-level", v.GetString("log-level"), "debug, info, warn or error")
	flags.String("log-format", v.GetString("log-format"), "text or json")

	// A flag set on the command line wins over environment and file.
	cobra.CheckErr(v.BindPFlags(flags))

	root.AddCommand(newServeCommand(v), newStatsCommand())
	return root
}

