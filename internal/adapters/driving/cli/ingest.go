package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/logger"
)

var ingestTags string

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest documents into the index",
	Long: `Ingest one or more documents. Arguments may be files or directories;
directories are walked recursively and files with unsupported extensions
are skipped. Formats: pdf, docx, txt, md, png, jpg, jpeg, tiff, bmp.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTags, "tags", "t", "", "comma-separated tags to apply")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	tags, err := domain.ParseTagList(ingestTags)
	if err != nil {
		return err
	}

	reqs, err := collectRequests(args, tags)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no ingestable files found")
	}

	logger.Section("Ingesting %d file(s)", len(reqs))
	outcomes := ingestService.IngestAll(cmd.Context(), reqs)

	failed := 0
	for _, outcome := range outcomes {
		switch {
		case outcome.Err != nil && outcome.Document != nil:
			failed++
			cmd.Printf("PARTIAL  %s (%s): %v\n", outcome.Filename, outcome.Document.ID, outcome.Err)
		case outcome.Err != nil:
			failed++
			cmd.Printf("FAILED   %s: %v\n", outcome.Filename, outcome.Err)
		default:
			cmd.Printf("OK       %s (%s)\n", outcome.Filename, outcome.Document.ID)
		}
	}

	cmd.Printf("\n%d ingested, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
	}
	return nil
}

// collectRequests expands files and directories into ingest requests.
// Unsupported extensions fail for explicit file arguments but are
// silently skipped during directory walks.
func collectRequests(paths []string, tags []string) ([]domain.IngestRequest, error) {
	var reqs []domain.IngestRequest

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			req, err := requestFromFile(path, tags)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ferr := domain.FormatFromPath(p); ferr != nil {
				logger.Debug("Skipping %s: unsupported extension", p)
				return nil
			}
			req, rerr := requestFromFile(p, tags)
			if rerr != nil {
				return rerr
			}
			reqs = append(reqs, req)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}

	return reqs, nil
}

func requestFromFile(path string, tags []string) (domain.IngestRequest, error) {
	format, err := domain.FormatFromPath(path)
	if err != nil {
		return domain.IngestRequest{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.IngestRequest{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return domain.IngestRequest{
		Filename: filepath.Base(path),
		Format:   format,
		Content:  content,
		Tags:     tags,
	}, nil
}
