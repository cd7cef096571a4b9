package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"talisman/internal/assets"
	"talisman/internal/config"
	"talisman/internal/imaging"
	"talisman/internal/logging"
)

// iconPrefixes selects the item classes whose icons ship in the stash UI.
var iconPrefixes = []string{
	"Metadata/Items/Gems",
	"Metadata/Items/Belts",
	"Metadata/Items/Rings",
	"Metadata/Items/Flasks",
	"Metadata/Items/Amulets",
	"Metadata/Items/Armours",
	"Metadata/Items/Weapons",
	"Metadata/Items/Trinkets",
}

// isFlask matches the records whose source art carries two side-by-side
// layers that must be composited into one icon.
func isFlask(file *assets.File) bool {
	return file.ID.HasPrefix("Metadata/Items/Flasks") || file.ID.HasPrefix("UniqueFlask")
}

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Extract item icons from the bundle as WebP images",
		Long: `Walk the item tables in the bundle, resolve each selected record to its
icon art, and write one WebP image per item name into the output directory.

Examples:
  talisman --patch 3.25.1.2 assets
  talisman --local ./bundle assets --out ./icons`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			runID := uuid.NewString()
			logger = logger.With(logging.String("run_id", runID))

			out := strings.TrimSpace(outDir)
			if out == "" {
				out = cfg.Output.Dir
			}
			expanded, err := config.ExpandPath(out)
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}
			out = expanded
			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("create output directory %q: %w", out, err)
			}

			idx, closeIndex, err := ctx.openIndex(cfg)
			if err != nil {
				return err
			}
			defer closeIndex()

			reporter := assets.NewCountingReporter(assets.NewLogReporter(logger))

			pipeline := assets.New(idx, out, assets.WithReporter(reporter))
			for _, prefix := range iconPrefixes {
				pipeline.Select(assets.IDPrefix(prefix))
			}
			pipeline.Select(assets.KindIs(assets.KindUnique))
			pipeline.Postprocess(assets.MatcherFunc(isFlask), assets.TransformFunc((*imaging.Image).Flask))

			logger.Info("extraction starting",
				logging.String("out", out),
			)
			total, err := pipeline.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("extract assets: %w", err)
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintln(stdout, renderRunSummary(total, reporter.Skips()))
			fmt.Fprintln(stdout, completionLine(total, out, shouldColorize(stdout)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory for extracted icons (default from config)")
	return cmd
}

func renderRunSummary(total int, skips map[assets.SkipReason]int) string {
	rows := [][]string{{"written", strconv.Itoa(total)}}

	reasons := make([]assets.SkipReason, 0, len(skips))
	for reason := range skips {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, reason := range reasons {
		rows = append(rows, []string{"skipped: " + reason.String(), strconv.Itoa(skips[reason])})
	}

	return renderTable(
		[]string{"Outcome", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}

func completionLine(total int, out string, colorize bool) string {
	line := fmt.Sprintf("Extracted %d icons to %s", total, out)
	if colorize {
		line = ansiGreen + line + ansiReset
	}
	return line
}
