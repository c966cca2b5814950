package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

func (c *cli) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load spreadsheet word lists into the catalog",
		Long: `Load every mapped .xlsx file of the source directory into the catalog.

The mapping file is a JSON object keyed by file name without extension:
  {"en_top": {"slug": "en-top", "name": "English top", "source_lang": "en", "target_lang": "ru"}}

Rows are "word | count | translation". Imports are upserts and can be re-run.
With --async the import is queued as an import_words job instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			mapPath, _ := cmd.Flags().GetString("map")
			async, _ := cmd.Flags().GetBool("async")
			if dir == "" {
				dir = c.cfg.ImportSourceDir
			}
			if mapPath == "" {
				mapPath = c.cfg.ImportMapPath
			}

			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if async {
				job, err := a.queue.Enqueue(cmd.Context(), models.JobImportWords, nil, models.ImportPayload{SourceDir: dir, MapPath: mapPath}, utcNow())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), job)
			}

			stats, err := a.importer.Import(cmd.Context(), dir, mapPath)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			logger.Info("imported %d corpora, %d words", stats.Corpora, stats.Words)
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().String("dir", "", "directory holding .xlsx files (default IMPORT_SOURCE_DIR)")
	cmd.Flags().String("map", "", "mapping JSON file (default IMPORT_MAP_PATH)")
	cmd.Flags().Bool("async", false, "queue an import_words job instead of importing now")
	return cmd
}
