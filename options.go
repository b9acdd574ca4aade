package mosaic

import (
	"github.com/sirupsen/logrus"

	"github.com/tsawler/mosaic/embed"
)

// chunkOptions holds per-call configuration that is not part of config.Config
type chunkOptions struct {
	documentID string
	embedder   *embed.ContentEmbedder
	logger     logrus.FieldLogger

	// regionWorkers overrides Pipeline.RegionWorkers when positive
	regionWorkers int
}

// defaultOptions returns the default options
func defaultOptions() chunkOptions {
	return chunkOptions{}
}

// clone returns a copy of the options. Every field is a value or a shared
// read-only service, so a plain copy is enough.
func (o chunkOptions) clone() chunkOptions {
	return o
}
