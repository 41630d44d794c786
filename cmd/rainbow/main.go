// Command rainbow encodes byte payloads into steganographic HTTP
// packets and decodes them back.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"rainbow/internal/conf"
	"rainbow/internal/flog"
	"rainbow/internal/rainbow"
)

var (
	cfgFile  string
	logLevel string
	asClient bool

	cfg *conf.Conf
)

var rootCmd = &cobra.Command{
	Use:           "rainbow",
	Short:         "Hide byte payloads inside ordinary-looking HTTP traffic",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = conf.LoadFromFile(cfgFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("client") {
				asClient = cfg.IsClient()
			}
		} else {
			role := "server"
			if asClient {
				role = "client"
			}
			cfg = conf.Default(role)
		}
		if cmd.Flags().Changed("log-level") || cfgFile == "" {
			flog.SetLevel(logLevel)
		} else {
			flog.SetLevel(cfg.Log.Level)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&asClient, "client", false, "act as the client role (request-shaped packets)")
}

// newEngine builds the engine from the effective configuration.
func newEngine(opts ...rainbow.Option) *rainbow.Rainbow {
	base := []rainbow.Option{
		rainbow.WithChunkCeiling(cfg.Encoding.ChunkSize),
		rainbow.WithCompression(cfg.Encoding.Compress),
	}
	return rainbow.New(append(base, opts...)...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		flog.Errorf("%v", err)
		os.Exit(1)
	}
}
