// Command mosaic turns documents into embedded chunks.
//
// Usage:
//
//	mosaic report.pdf notes.md              # chunks as JSON lines on stdout
//	mosaic -config mosaic.yaml *.pdf        # provider and workers from a file
//	mosaic -index ./idx -embeddings a.html  # also store chunks in a chromem index
//	mosaic -index ./idx -search "revenue"   # query the index and exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/mosaic"
	"github.com/tsawler/mosaic/config"
	"github.com/tsawler/mosaic/embed"
	"github.com/tsawler/mosaic/index"
	"github.com/tsawler/mosaic/internal/logging"
	"github.com/tsawler/mosaic/pipeline"
)

type options struct {
	configPath string
	mimeType   string
	indexPath  string
	search     string
	limit      int
	embeddings bool
	logLevel   string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to mosaic.yaml config file")
	flag.StringVar(&o.mimeType, "mime", "", "MIME type for every input (default: from extension or content)")
	flag.StringVar(&o.indexPath, "index", "", "directory of a persistent chunk index to write to")
	flag.StringVar(&o.search, "search", "", "query the index and exit")
	flag.IntVar(&o.limit, "limit", 10, "max search results")
	flag.BoolVar(&o.embeddings, "embeddings", false, "include embedding vectors in the output")
	flag.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, flag.Args(), os.Stdout); err != nil {
		logrus.WithError(err).Error("mosaic: fatal")
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, files []string, out io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.indexPath != "" {
		cfg.Index.Path = o.indexPath
	}
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger := logging.New(level, cfg.Log.Format, os.Stderr)

	client, err := embed.NewFromConfig(ctx, cfg.Embed, logger)
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}

	var store *index.Store
	if o.indexPath != "" || o.search != "" {
		store, err = index.Open(cfg.Index)
		if err != nil {
			return err
		}
	}

	if o.search != "" {
		return search(ctx, client, store, o.search, o.limit, out)
	}
	if len(files) == 0 {
		return errors.New("no input files (see -h)")
	}

	docs := make([]pipeline.Document, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		mimeType := o.mimeType
		if mimeType == "" {
			mimeType = mosaic.MIMETypeForPath(path)
		}
		docs = append(docs, pipeline.Document{Name: filepath.Base(path), MIMEType: mimeType, Data: data})
	}

	p := pipeline.New(embed.NewContentEmbedder(client),
		pipeline.WithConfig(cfg.Pipeline),
		pipeline.WithLogger(logger),
	)

	enc := json.NewEncoder(out)
	failed := 0
	for _, br := range p.ProcessAll(ctx, docs) {
		log := logger.WithField("name", br.Document.Name)
		if br.Err != nil {
			failed++
			log.WithError(br.Err).Error("document failed")
			continue
		}
		res := br.Result
		log.WithFields(logrus.Fields{
			"document_id": res.DocumentID,
			"format":      res.Format,
			"chunks":      len(res.Chunks),
		}).Info(res.Summary())

		if store != nil {
			if err := store.DeleteDocument(ctx, res.DocumentID); err != nil {
				return err
			}
			if err := store.Put(ctx, res.Chunks); err != nil {
				return err
			}
		}

		for _, c := range res.Chunks {
			if !o.embeddings {
				c.Embedding = nil
			}
			if err := enc.Encode(c); err != nil {
				return err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

func search(ctx context.Context, client *embed.Client, store *index.Store, query string, limit int, out io.Writer) error {
	vec, err := client.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}
	hits, err := store.Query(ctx, vec, limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, h := range hits {
		if err := enc.Encode(h); err != nil {
			return err
		}
	}
	return nil
}
