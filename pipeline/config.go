package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/tsawler/mosaic/chunk"
	"github.com/tsawler/mosaic/extract"
	"github.com/tsawler/mosaic/imagemeta"
	"github.com/tsawler/mosaic/tablemeta"
	"github.com/tsawler/mosaic/tables"
)

// Config holds pipeline configuration
type Config struct {
	// RegionWorkers bounds concurrent region tasks within one document (default: 8)
	RegionWorkers int `yaml:"region_workers"`

	// DocumentWorkers bounds concurrent documents in ProcessAll (default: 4)
	DocumentWorkers int `yaml:"document_workers"`

	Extract  extract.Config `yaml:"extract"`
	Splitter chunk.Splitter `yaml:"splitter"`
}

// DefaultConfig returns default pipeline configuration
func DefaultConfig() Config {
	return Config{
		RegionWorkers:   8,
		DocumentWorkers: 4,
		Extract:         extract.DefaultConfig(),
		Splitter:        chunk.DefaultSplitter(),
	}
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithConfig replaces the pipeline configuration. Non-positive worker counts
// fall back to the defaults.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) {
		def := DefaultConfig()
		if cfg.RegionWorkers <= 0 {
			cfg.RegionWorkers = def.RegionWorkers
		}
		if cfg.DocumentWorkers <= 0 {
			cfg.DocumentWorkers = def.DocumentWorkers
		}
		p.cfg = cfg
	}
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithStructurer sets the table structurer
func WithStructurer(s *tables.Structurer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.structurer = s
		}
	}
}

// WithTableAnalyzer sets the table metadata analyzer
func WithTableAnalyzer(a *tablemeta.Analyzer) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.tables = a
		}
	}
}

// WithImageAnalyzer sets the image metadata analyzer
func WithImageAnalyzer(a *imagemeta.Analyzer) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.images = a
		}
	}
}

// WithSplitter sets the passage splitter, overriding Config.Splitter
func WithSplitter(s chunk.Splitter) Option {
	return func(p *Pipeline) {
		p.splitter = &s
	}
}

// WithExtractOptions passes options to every extract.Open call, for example
// extract.WithRecognizer.
func WithExtractOptions(opts ...extract.Option) Option {
	return func(p *Pipeline) {
		p.extractOpts = append(p.extractOpts, opts...)
	}
}
