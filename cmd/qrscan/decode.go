package main

import (
	"fmt"
	"os"

	// Registered for image.Decode. PNG covers the teacher's own output;
	// bmp/tiff come from golang.org/x/image since scanned/phone-camera QR
	// captures show up in those formats often enough to be worth decoding.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/spf13/cobra"

	"github.com/ashokshau/qrscan"
	"github.com/ashokshau/qrscan/internal/hostio"
)

func newDecodeCmd(configPath *string) *cobra.Command {
	var maxDim int
	var debug bool

	cmd := &cobra.Command{
		Use:   "decode [image files...]",
		Short: "Decode every QR symbol found in one or more image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(*configPath)
			if err != nil {
				return err
			}
			opts := fc.options()
			if maxDim > 0 {
				opts = append(opts, qrscan.WithMaxDimension(maxDim))
			}
			if debug {
				opts = append(opts, qrscan.WithDebug(true))
			}

			for _, path := range args {
				if err := decodeFile(path, opts); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDim, "max-dim", 0, "override the detector's max-dimension downscale")
	cmd.Flags().BoolVar(&debug, "debug", false, "emit per-strategy-step telemetry via slog")
	return cmd
}

func decodeFile(path string, opts []qrscan.Option) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	report, err := hostio.Decode(f, opts...)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	if len(report.Results) == 0 {
		fmt.Printf("%s: no symbol found (%s)\n", path, report.Telemetry.Signature())
		return nil
	}
	for i, r := range report.Results {
		fmt.Printf("%s[%d]: version=%d ec=%s mask=%d text=%q\n", path, i, r.Version, r.ECLevel, r.MaskPattern, r.Payload.Text)
	}
	return nil
}
