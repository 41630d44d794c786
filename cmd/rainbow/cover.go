package main

import (
	"os"

	"github.com/spf13/cobra"

	"rainbow/internal/flog"
)

var (
	coverLength int
	coverOutput string
)

var coverCmd = &cobra.Command{
	Use:   "cover",
	Short: "Generate a cover packet of approximately the given length",
	RunE: func(cmd *cobra.Command, args []string) error {
		pkt, err := newEngine().GenerateCoverPacket(coverLength, asClient)
		if err != nil {
			return err
		}

		if coverOutput == "-" {
			if _, err := os.Stdout.Write(pkt); err != nil {
				return err
			}
		} else if err := os.WriteFile(coverOutput, pkt, 0o644); err != nil {
			return err
		}

		flog.Infof("generated %d byte cover packet (target %d)", len(pkt), coverLength)
		return nil
	},
}

func init() {
	coverCmd.Flags().IntVar(&coverLength, "length", 1500, "target packet length in bytes")
	coverCmd.Flags().StringVarP(&coverOutput, "output", "o", "-", "packet destination, - for stdout")
	rootCmd.AddCommand(coverCmd)
}
