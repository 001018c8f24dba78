// Command analyze reviews PGN files with a local engine and prints a style report.
//
// Usage:
//
//	analyze [-depth N] [-workers N] [-blunders] file.pgn|folder ...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lk16/chessreview/internal/analysis"
	"github.com/lk16/chessreview/internal/config"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/rules"
	"github.com/lk16/chessreview/internal/services"
	"golang.org/x/sync/errgroup"
)

type gameResult struct {
	File     string                `json:"file"`
	Index    int                   `json:"index"`
	Metadata *models.GameMetadata  `json:"metadata"`
	Result   analysisResultSummary `json:"result"`
	Blunders []models.BlunderCard  `json:"blunders,omitempty"`

	records []models.AnalysisRecord
}

type analysisResultSummary struct {
	Plies      int    `json:"plies"`
	Incomplete bool   `json:"incomplete"`
	Error      string `json:"error,omitempty"`
}

type job struct {
	file  string
	index int
	game  *rules.Game
}

func main() {
	depth := flag.Int("depth", config.DefaultAnalysisDepth, "search depth per position")
	workers := flag.Int("workers", config.DefaultEngineSessions, "number of engine processes")
	blunders := flag.Bool("blunders", false, "include blunder cards for every game")
	flag.Parse()

	config.LoadDotEnv()
	config.SetLogLevel()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze [-depth N] [-workers N] [-blunders] file.pgn|folder ...")
		os.Exit(2)
	}

	files, err := getPgnFiles(flag.Args())
	if err != nil {
		slog.Error("Failed to find PGN files", "error", err)
		os.Exit(1)
	}

	jobs, err := loadJobs(files)
	if err != nil {
		slog.Error("Failed to load PGN files", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engineCfg := config.LoadEngineConfig()
	pool := services.NewEnginePool(services.UCIEngineFactory(engineCfg, models.NewCache()), *workers)
	defer pool.Close()

	results, err := analyzeAll(ctx, pool, jobs, *depth, *workers)
	if err != nil {
		slog.Error("Analysis failed", "error", err)
		os.Exit(1)
	}

	games := make([]models.GameRecords, 0, len(results))
	for i := range results {
		timeControl := ""
		if results[i].Metadata != nil {
			timeControl = results[i].Metadata.TimeControl
		}
		games = append(games, models.GameRecords{TimeControl: timeControl, Records: results[i].records})

		if *blunders {
			results[i].Blunders = analysis.BlunderCards(results[i].records, 0)
		}
	}

	output := struct {
		Games  []gameResult       `json:"games"`
		Report models.StyleReport `json:"report"`
	}{
		Games:  results,
		Report: analysis.SummarizeGames(games),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(output); err != nil {
		slog.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
}

// analyzeAll reviews all jobs with at most workers engines at the same time.
// Results keep the order of jobs. Only failing to start an engine stops the run.
func analyzeAll(ctx context.Context, pool *services.EnginePool, jobs []job, depth, workers int) ([]gameResult, error) {
	results := make([]gameResult, len(jobs))

	var progressMutex sync.Mutex
	done := 0

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, j := range jobs {
		group.Go(func() error {
			engine, err := pool.Acquire(ctx)
			if err != nil {
				return err
			}

			result := analysis.NewPipeline(engine, depth).AnalyzeGame(ctx, j.game.Start, j.game.Moves)
			pool.Release(engine, result.Err)

			results[i] = gameResult{
				File:     j.file,
				Index:    j.index,
				Metadata: j.game.Metadata,
				Result: analysisResultSummary{
					Plies:      len(result.Records),
					Incomplete: result.Incomplete,
				},
				records: result.Records,
			}
			if result.Err != nil {
				results[i].Result.Error = result.Err.Error()
			}

			progressMutex.Lock()
			done++
			percentage := 100.0 * float64(done) / float64(len(jobs))
			slog.Info("Analysing games", "progress", fmt.Sprintf("%d/%d (%6.2f%%)", done, len(jobs), percentage))
			progressMutex.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func loadJobs(files []string) ([]job, error) {
	var jobs []job

	for _, file := range files {
		games, err := rules.LoadPGNFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		for i, game := range games {
			jobs = append(jobs, job{file: file, index: i, game: game})
		}
	}

	return jobs, nil
}

// getPgnFiles expands folders to the .pgn files inside them, sorted by name.
func getPgnFiles(paths []string) ([]string, error) {
	var files []string

	for _, root := range paths {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() && (path == root || strings.HasSuffix(path, ".pgn")) {
				files = append(files, path)
			}

			return nil
		})

		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
