package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"voltaire/internal/source"
)

// ErrNoFiles is returned when the arguments expand to no checkable file.
var ErrNoFiles = errors.New("no .txt or .md files found")

// FileResult содержит результат проверки одного файла
type FileResult struct {
	Path    string
	Result  *Result // nil при ошибке
	Err     error
	Elapsed time.Duration
}

// isTextFile reports whether path has a checkable extension.
func isTextFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// CollectFiles expands args into a sorted, de-duplicated list of files.
// Directories are walked for *.txt and *.md; explicit files are accepted whatever their extension.
func CollectFiles(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// скрытые каталоги (.git и т.п.) пропускаем
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isTextFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckFiles checks paths in parallel, at most jobs at a time (GOMAXPROCS when jobs <= 0).
// Per-file failures are reported in FileResult.Err; the returned error is only
// set when ctx is cancelled. Results keep the order of paths.
func (c *Checker) CheckFiles(ctx context.Context, paths []string, jobs int, sink ProgressSink) ([]FileResult, error) {
	if sink == nil {
		sink = nopSink{}
	}
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, path := range paths {
		sink.OnEvent(Event{File: path, Status: StatusQueued})
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, err := c.checkFile(gctx, path, sink)
			elapsed := time.Since(start)
			results[i] = FileResult{Path: path, Result: res, Err: err, Elapsed: elapsed}

			if err != nil {
				sink.OnEvent(Event{File: path, Status: StatusError, Err: err, Elapsed: elapsed})
				// отмену пробрасываем, остальные ошибки остаются в результате
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			sink.OnEvent(Event{File: path, Stage: StageRender, Status: StatusDone, Issues: len(res.Annotations), Elapsed: elapsed})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (c *Checker) checkFile(ctx context.Context, path string, sink ProgressSink) (*Result, error) {
	in, err := source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return c.check(ctx, in, sink)
}
