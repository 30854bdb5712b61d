// Package devserver serves the web client during development,
// rebuilding it whenever its sources change.
package devserver

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"clientbuild.dev/internal/projectconfig"
	"clientbuild.dev/pkg/bundler"
	"clientbuild.dev/pkg/watcher"
)

type Options struct {
	Bundle bundler.Options
	Host   string
	Port   int

	// Ready, if set, is called once the server is listening.
	Ready func(bundler.ServeResult)
}

// Run builds the client, serves it and rebuilds on changes until ctx is done.
// Build failures are logged and do not stop the server.
func Run(ctx context.Context, opts Options) error {
	logger := log.With().Str("component", "devserver").Logger()

	bctx, err := bundler.NewContext(opts.Bundle)
	if err != nil {
		return err
	}
	defer bctx.Dispose()

	if _, err := bctx.Rebuild(ctx); err != nil {
		logger.Error().Err(err).Msg("initial build failed, waiting for changes")
	}

	srv, err := bctx.Serve(opts.Host, opts.Port)
	if err != nil {
		return err
	}
	logger.Info().Str("host", srv.Host).Uint16("port", srv.Port).Msg("serving client")
	if opts.Ready != nil {
		opts.Ready(srv)
	}

	w, err := watcher.New(opts.Bundle.OutDir())
	if err != nil {
		return err
	}
	if err := w.RecursivelyWatch(opts.Bundle.Root); err != nil {
		_ = w.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watchLoop(ctx, bctx, w, opts.Bundle.Root, &logger)
	})
	g.Go(func() error {
		<-ctx.Done()
		return w.Close()
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func watchLoop(ctx context.Context, bctx *bundler.Context, w *watcher.Watcher, root string, logger *zerolog.Logger) error {
	configPath := filepath.Clean(projectconfig.Path(root))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.EventsReady:
		}

		batch := w.GetEventsBatch()
		if batch == nil {
			continue
		}
		paths := batch.Paths()
		logger.Debug().Strs("paths", paths).Msg("sources changed")
		for _, p := range paths {
			if p == configPath {
				logger.Warn().Msgf("%s changed, restart to apply", projectconfig.FileName)
			}
		}

		if _, err := bctx.Rebuild(ctx); errors.Is(err, context.Canceled) {
			return err
		} else if err != nil {
			logger.Error().Err(err).Msg("rebuild failed")
		}
	}
}
