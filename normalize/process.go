package normalize

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	tt "github.com/gnolang/modernize/internal/types"
)

// FileResult is the outcome of normalizing one file.
type FileResult struct {
	Filename string
	Original string `json:"-"`
	Text     string `json:"-"`
	Applied  []tt.Rewrite
}

// Changed reports whether the file content was rewritten.
func (r FileResult) Changed() bool {
	return r.Text != r.Original
}

var desiredExtensions = map[string]bool{
	".py":  true,
	".js":  true,
	".ts":  true,
	".jsx": true,
	".tsx": true,
	".mjs": true,
	".cjs": true,
	".md":  true,
	".txt": true,
}

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

// ProcessSources normalizes in-memory sources in parallel. Results are in the
// order of sources.
func ProcessSources(ctx context.Context, logger *zap.Logger, engine Engine, sources []string) ([]tt.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]tt.Result, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = engine.NormalizeWithTrace(source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Error processing sources", zap.Error(err))
		return nil, err
	}
	return results, nil
}

// ProcessFiles runs ProcessPath over each path and concatenates the results.
func ProcessFiles(ctx context.Context, logger *zap.Logger, engine Engine, paths []string, write bool) ([]FileResult, error) {
	var all []FileResult
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, write)
		all = append(all, results...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return all, err
		}
	}
	return all, nil
}

// ProcessPath normalizes a file, or every source-like file under a directory.
// When write is set, changed files are rewritten in place. On cancellation
// the results finished so far are returned along with the context error.
func ProcessPath(ctx context.Context, logger *zap.Logger, engine Engine, path string, write bool) ([]FileResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		result, err := ProcessFile(engine, path, write)
		if err != nil {
			return nil, err
		}
		return []FileResult{result}, nil
	}

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("collected files", zap.String("path", path), zap.Int("count", len(files)))

	var progress io.Writer = io.Discard
	if len(files) > 1 {
		progress = os.Stderr
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make([]FileResult, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, fp := range files {
		i, fp := i, fp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := ProcessFile(engine, fp, write)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				return err
			}
			results[i] = result
			done[i] = true
			_ = bar.Add(1)
			return nil
		})
	}
	err = g.Wait()
	_ = bar.Finish()

	finished := make([]FileResult, 0, len(files))
	for i := range results {
		if done[i] {
			finished = append(finished, results[i])
		}
	}
	if err != nil {
		return finished, err
	}
	return finished, ctx.Err()
}

// ProcessFile normalizes a single file, writing it back when write is set and
// the content changed.
func ProcessFile(engine Engine, filename string, write bool) (FileResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	original := string(data)
	out := engine.NormalizeWithTrace(original)
	for i := range out.Applied {
		out.Applied[i].Filename = filename
		out.Applied[i].Start.Filename = filename
		out.Applied[i].End.Filename = filename
	}
	result := FileResult{
		Filename: filename,
		Original: original,
		Text:     out.Text,
		Applied:  out.Applied,
	}

	if write && result.Changed() {
		info, err := os.Stat(filename)
		if err != nil {
			return result, err
		}
		if err := os.WriteFile(filename, []byte(result.Text), info.Mode().Perm()); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}
	return result, nil
}

func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if hasDesiredExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}
