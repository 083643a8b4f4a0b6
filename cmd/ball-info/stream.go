package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/ball-info/internal/config"
	"github.com/ironsheep/ball-info/internal/detection"
	"github.com/ironsheep/ball-info/internal/node"
	"github.com/ironsheep/ball-info/internal/publisher"
	"github.com/ironsheep/ball-info/internal/source"
)

const shutdownTimeout = 5 * time.Second

// runStream runs the detection node until the source ends or the process is
// interrupted. The websocket server, when configured, is shut down with it.
func runStream(cfg *config.Config, detector *detection.Detector, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// The source lives on the group context so a failing listener also
	// stops ffmpeg.
	src, err := source.Open(gctx, cfg.Source, logger)
	if err != nil {
		return errors.Wrap(err, "open source")
	}
	defer src.Close()

	var pubs []publisher.Publisher
	if cfg.Publish.Stdout {
		pubs = append(pubs, publisher.NewJSONLines(os.Stdout))
	}

	var hub *publisher.Hub
	var srv *http.Server
	if cfg.Publish.Listen != "" {
		hub = publisher.NewHub(logger)
		pubs = append(pubs, hub)
		srv = &http.Server{
			Addr:              cfg.Publish.Listen,
			Handler:           hub.Router(detector.Classes()),
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		}
	}
	if len(pubs) == 0 {
		logger.Warn("no publishers configured; detections go to the log")
		pubs = append(pubs, publisher.Func(func(_ context.Context, msg publisher.Message) error {
			logger.Info("balls", zap.Uint64("seq", msg.Seq), zap.Any("balls", msg.Balls))
			return nil
		}))
	}

	n := &node.Node{
		Source:        src,
		Detector:      detector,
		Publishers:    pubs,
		Logger:        logger.Named("node"),
		PublishEmpty:  cfg.Publish.PublishEmpty,
		AnnotateDir:   cfg.Annotate.Dir,
		AnnotateEvery: cfg.Annotate.Every,
	}

	nodeDone := make(chan struct{})

	g.Go(func() error {
		defer close(nodeDone)
		err := n.Run(gctx)
		logger.Info("node stopped", zap.Any("stats", n.Stats()))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if srv != nil {
		g.Go(func() error {
			logger.Info("serving ball info", zap.String("addr", srv.Addr), zap.String("path", publisher.TopicPath))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "listen")
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-nodeDone:
			}
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
