// Package flags provides the flags shared by several commands.
//
// Command-specific flags are defined in the command file.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is the env config read when --config is not set. A missing file falls back
// to the environment variables.
const DefaultConfigFile = ".env.yml"

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustStringSlice returns the string slice value, ignoring the error.
func MustStringSlice(s []string, _ error) []string { return s }

// Network adds the required --network/-n flag. It accepts a network name or chain id.
// Also supports the hardhat style --chainId alias.
func Network(cmd *cobra.Command) {
	cmd.Flags().StringP("network", "n", "", "Network name or chain id (required)")
	_ = cmd.MarkFlagRequired("network")

	existingNormalize := cmd.Flags().GetNormalizeFunc()
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "chainId" {
			return pflag.NormalizedName("network")
		}
		if existingNormalize != nil {
			return existingNormalize(f, name)
		}

		return pflag.NormalizedName(name)
	})
}

// Config adds the persistent --config/-c flag selecting the env config file.
func Config(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", DefaultConfigFile, "Env config file")
}

// Manifest adds the persistent --manifest/-m flag. Manifests are merged over the bundled one in
// the given order.
func Manifest(cmd *cobra.Command) {
	cmd.PersistentFlags().StringSliceP("manifest", "m", nil, "Network manifest merged over the bundled one (repeatable)")
}

// Store adds the persistent --store and --store-dir flags overriding the configured record store.
func Store(cmd *cobra.Command) {
	cmd.PersistentFlags().String("store", "", "Record store: file, postgres or memory")
	cmd.PersistentFlags().String("store-dir", "", "Root directory of the file record store")
}
