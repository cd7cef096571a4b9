package main

import (
	"crypto/sha256"
	"fmt"

	"github.com/spf13/cobra"
)

func newShaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sha <path>",
		Short: "Print the SHA-256 digest of a bundled file",
		Long: `Fetch a single file from the bundle and print its SHA-256 digest.
Useful for verifying that a mirror serves the same bytes as the patch CDN.

Examples:
  talisman --patch 3.25.1.2 sha Data/BaseItemTypes.dat64
  talisman --local ./bundle sha Art/2DItems/Gems/VaalHaste.dds`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			idx, closeIndex, err := ctx.openIndex(cfg)
			if err != nil {
				return err
			}
			defer closeIndex()

			data, err := idx.ReadByPath(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%x  %s\n", sha256.Sum256(data), args[0])
			return nil
		},
	}
}
