package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ashokshau/qrscan"
)

// fileConfig mirrors a subset of qrscan.Config, loadable from --config (a
// yaml file), grounded on dfbb-im2code's internal/config.Config pattern:
// a plain struct with yaml tags plus a Defaults()-style merge, adapted
// here to the CLI's flag-vs-file precedence instead of a long-running
// service's startup config.
type fileConfig struct {
	MaxDimension     int     `yaml:"max_dimension"`
	Budget           int     `yaml:"budget"`
	TopKTriplets     int     `yaml:"top_k_triplets"`
	ErasureThreshold float64 `yaml:"erasure_threshold"`
	Debug            bool    `yaml:"debug"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("qrscan: reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("qrscan: parsing config file: %w", err)
	}
	return fc, nil
}

func (fc fileConfig) options() []qrscan.Option {
	var opts []qrscan.Option
	if fc.MaxDimension > 0 {
		opts = append(opts, qrscan.WithMaxDimension(fc.MaxDimension))
	}
	if fc.Budget > 0 {
		opts = append(opts, qrscan.WithBudget(fc.Budget))
	}
	if fc.TopKTriplets > 0 {
		opts = append(opts, qrscan.WithTopKTriplets(fc.TopKTriplets))
	}
	if fc.ErasureThreshold > 0 {
		opts = append(opts, qrscan.WithErasureThreshold(fc.ErasureThreshold))
	}
	if fc.Debug {
		opts = append(opts, qrscan.WithDebug(true))
	}
	return opts
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "qrscan",
		Short: "Locate and decode QR symbols in image files",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a yaml config file")

	root.AddCommand(newDecodeCmd(&configPath))
	return root
}
