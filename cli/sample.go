package cli

import (
	"github.com/gear6io/quackview/server/storage/parquet"
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample [file]",
	Short: "Write a demo parquet file",
	Long: `Write a small parquet file with columns id, name and colX to try
imports and indices without any data of your own.

Examples:
  quackview sample sample.parquet --rows 100
  quackview import sample.parquet && quackview index sample colX`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

type sampleOptions struct {
	rows        int
	compression string
}

var sampleOpts = &sampleOptions{}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().IntVar(&sampleOpts.rows, "rows", 100, "number of rows")
	sampleCmd.Flags().StringVar(&sampleOpts.compression, "compression", "snappy", "parquet codec: uncompressed, snappy, gzip, zstd, lz4, brotli")
}

func runSample(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)

	if err := parquet.WriteSample(args[0], sampleOpts.rows, parquet.WriteOptions{Compression: sampleOpts.compression}); err != nil {
		d.Error("Failed to write sample: %v", err)
		return err
	}

	d.Success("Wrote %d rows to %s", sampleOpts.rows, args[0])
	return nil
}
