package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"talisman/internal/fileutil"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Copy a single bundled file to disk",
		Long: `Fetch a single file from the bundle and write it to the working
directory under its base name, or to --out when given.

Examples:
  talisman --patch 3.25.1.2 extract Data/BaseItemTypes.dat64
  talisman --local ./bundle extract Art/2DItems/Gems/VaalHaste.dds --out gem.dds`,
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

			target := strings.TrimSpace(outPath)
			if target == "" {
				target = path.Base(args[0])
			}
			if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(data), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination path (default: base name in the working directory)")
	return cmd
}
