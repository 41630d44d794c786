package main

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"rainbow/internal/flog"
	"rainbow/internal/rainbow"
)

var decodeOutput string

var decodeCmd = &cobra.Command{
	Use:   "decode <packet-file>...",
	Short: "Recover the payload from packet files",
	Long: `Recover the payload hidden in a set of packet files. The --client
flag names the role that ENCODED the packets, so decoding server
responses requires leaving it unset.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := append([]string(nil), args...)
		sort.Strings(paths)

		engine := newEngine()
		results := make([]*rainbow.DecodeResult, 0, len(paths))
		for i, path := range paths {
			pkt, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			res, err := engine.DecryptSingleRead(pkt, i, asClient)
			if err != nil {
				flog.Warnf("skipping %s: %v", path, err)
				continue
			}
			if res.Cover {
				flog.Debugf("%s is cover traffic, dropped", path)
				continue
			}
			results = append(results, res)
		}

		payload, err := rainbow.Reassemble(results)
		if err != nil {
			return err
		}

		if decodeOutput == "-" {
			if _, err := os.Stdout.Write(payload); err != nil {
				return err
			}
		} else if err := os.WriteFile(decodeOutput, payload, 0o644); err != nil {
			return err
		}

		flog.Infof("recovered %d bytes from %d packets", len(payload), len(results))
		return nil
	},
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "-", "payload destination, - for stdout")
	rootCmd.AddCommand(decodeCmd)
}
