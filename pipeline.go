package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/VladOS-0/dmi-assistant/dmi"
)

const scanWorkers = 10

func (a *Assistant) findIcons(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't an icon file
			if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(file), ".dmi") {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (a *Assistant) iconWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := a.indexIcon(file); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// indexIcon records the metadata of one icon file. Unchanged files are
// skipped on their checksum alone and unreadable icons are logged and
// skipped rather than aborting the scan.
func (a *Assistant) indexIcon(file string) error {
	crc, err := crcFile(file)
	if err != nil {
		return err
	}

	prev, err := a.db.Fingerprint(file)
	if err != nil {
		return err
	}
	if prev == crc {
		a.logger.Debug().Str("file", file).Msg("unchanged")
		return nil
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	cfg, err := dmi.DecodeConfig(f)
	f.Close()
	if err != nil {
		a.logger.Warn().Err(err).Str("file", file).Msg("skipping unreadable icon")
		return nil
	}

	if err := a.db.SetFile(file, crc, cfg); err != nil {
		return err
	}

	a.logger.Info().Str("file", file).Int("states", len(cfg.States)).Msg("indexed")

	return nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and indexes every icon file below it, then prunes
// index entries whose files have gone away.
func (a *Assistant) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := a.findIcons(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errc, err := a.iconWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return err
	}

	removed, err := a.db.RemoveMissing()
	if err != nil {
		return err
	}
	if removed > 0 {
		a.logger.Info().Int("removed", removed).Msg("pruned missing files")
	}

	return nil
}
