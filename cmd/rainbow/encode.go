package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rainbow/internal/flog"
)

var (
	encodeInput string
	encodeDir   string
	encodeMIME  string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a payload into a sequence of packet files",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(encodeInput)
		if err != nil {
			return err
		}

		mime := cfg.Encoding.MIMEType
		if cmd.Flags().Changed("mime") {
			mime = encodeMIME
		}
		dir := cfg.Output.Dir
		if cmd.Flags().Changed("out-dir") {
			dir = encodeDir
		}

		res, err := newEngine().EncodeWrite(data, asClient, mime)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for i, pkt := range res.Packets {
			name := filepath.Join(dir, fmt.Sprintf("packet_%04d.http", i))
			if err := os.WriteFile(name, pkt, 0o644); err != nil {
				return err
			}
			flog.Debugf("wrote %s (%d bytes, expect %d byte reply)",
				name, len(pkt), res.ExpectedReturnLengths[i])
		}

		flog.Infof("encoded %d bytes into %d packets under %s", res.PayloadLen, res.TotalChunks, dir)
		return nil
	},
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeInput, "input", "i", "-", "payload file, - for stdin")
	encodeCmd.Flags().StringVarP(&encodeDir, "out-dir", "o", "", "directory for packet files")
	encodeCmd.Flags().StringVar(&encodeMIME, "mime", "", "force one carrier MIME type, empty for random")
	rootCmd.AddCommand(encodeCmd)
}
