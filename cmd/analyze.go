package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
	"github.com/kozaktomas/photo-declutter/internal/config"
	"github.com/kozaktomas/photo-declutter/internal/embedding"
	"github.com/kozaktomas/photo-declutter/internal/pipeline"
	"github.com/kozaktomas/photo-declutter/internal/quality"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [directory]",
	Short: "Analyze a directory of photos and report duplicate groups",
	Long: `Analyze all images in a directory: compute embeddings, score quality,
and group visually similar shots.

The report lists each similarity group with its recommended keeper (the
highest quality member) plus all photos that have no close match.

Examples:
  # Analyze the current directory
  photo-declutter analyze .

  # Stricter grouping
  photo-declutter analyze ~/Photos --threshold 0.85

  # Machine-readable output
  photo-declutter analyze ~/Photos --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Float64("threshold", 0, "Similarity threshold for grouping (defaults to SIMILARITY_THRESHOLD)")
	analyzeCmd.Flags().Int("concurrency", 0, "Parallel analysis workers (defaults to ANALYZE_CONCURRENCY)")
	analyzeCmd.Flags().Bool("json", false, "Output as JSON")
}

// imageExtensions are the file extensions the analyze command picks up.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// collectImageFiles loads all images directly inside dir, sorted by name.
func collectImageFiles(dir string) ([]pipeline.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []pipeline.File
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path) //nolint:gosec // path built from directory listing
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}

		file := pipeline.File{Name: e.Name(), Data: data}
		if info, err := e.Info(); err == nil {
			file.ModTime = info.ModTime()
		}
		files = append(files, file)
	}
	return files, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	threshold := cfg.Declutter.SimilarityThreshold
	if v := mustGetFloat64(cmd, "threshold"); v > 0 {
		threshold = v
	}
	concurrency := cfg.Declutter.Concurrency
	if v := mustGetInt(cmd, "concurrency"); v > 0 {
		concurrency = v
	}
	jsonOutput := mustGetBool(cmd, "json")

	files, err := collectImageFiles(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No images found.")
		return nil
	}

	provider := embedding.NewClient(cfg.Embedding.URL)
	scorer := quality.NewScorer(provider, cfg.Prompts.Positive, cfg.Prompts.Negative)
	st := store.New()
	analyzer := pipeline.NewAnalyzer(st, provider, scorer, nil, nil, threshold, concurrency, cfg.Embedding.Dim)

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		fmt.Printf("Analyzing %d photos\n\n", len(files))
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Analyzing photos"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	state := analyzer.Process(context.Background(), files, func(done, total int) {
		if bar != nil {
			bar.Add(1)
		}
	})
	if bar != nil {
		fmt.Println()
	}

	if jsonOutput {
		return printAnalyzeJSON(state)
	}
	printAnalyzeReport(state)
	return nil
}

func printAnalyzeJSON(state *store.AppState) error {
	out := struct {
		Groups       []catalog.PhotoGroup `json:"groups"`
		UniquePhotos []catalog.Photo      `json:"unique_photos"`
	}{
		Groups:       state.Groups,
		UniquePhotos: state.UniquePhotos,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printAnalyzeReport(state *store.AppState) {
	fmt.Printf("\nFound %d similarity groups, %d unique photos\n\n", len(state.Groups), len(state.UniquePhotos))

	for i, g := range state.Groups {
		fmt.Printf("Group %d (min similarity %.2f):\n", i+1, g.Similarity)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for j, p := range g.Photos {
			marker := " "
			if j == 0 {
				marker = "*" // recommended keeper
			}
			fmt.Fprintf(w, "  %s\t%s\t%dx%d\tquality %d\n", marker, p.OriginalName, p.Width, p.Height, p.Quality)
		}
		w.Flush()
		fmt.Println()
	}

	if len(state.UniquePhotos) > 0 {
		fmt.Println("Unique photos:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, p := range state.UniquePhotos {
			fmt.Fprintf(w, "    %s\t%dx%d\tquality %d\n", p.OriginalName, p.Width, p.Height, p.Quality)
		}
		w.Flush()
	}
}
