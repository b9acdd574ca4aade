package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/mosaic/chunk"
	"github.com/tsawler/mosaic/embed"
	"github.com/tsawler/mosaic/extract"
	"github.com/tsawler/mosaic/imagemeta"
	"github.com/tsawler/mosaic/internal/logging"
	"github.com/tsawler/mosaic/model"
	"github.com/tsawler/mosaic/tablemeta"
	"github.com/tsawler/mosaic/tables"
)

// Document is one source document to process
type Document struct {
	// ID identifies the document in its chunks. Empty means a fresh UUID.
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"-"`
}

// Result is the outcome of processing one document. It is returned for
// failed documents too, carrying the diagnostics gathered so far.
type Result struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name,omitempty"`
	Format     string `json:"format,omitempty"`

	// State is the final state; States lists every state visited in order
	State  State   `json:"state"`
	States []State `json:"states"`

	Pages int `json:"pages"`

	// Regions counts the regions found plus one per unreadable page
	Regions int `json:"regions"`

	// Processed counts the regions that produced at least one chunk, or
	// were legitimately empty
	Processed int `json:"processed"`

	Chunks      []model.Chunk `json:"-"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

// Summary returns "N of M regions processed"
func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d regions processed", r.Processed, r.Regions)
}

// Pipeline processes documents into chunks. It holds no per-document state
// and is safe for concurrent use.
type Pipeline struct {
	embedder    *embed.ContentEmbedder
	cfg         Config
	logger      logrus.FieldLogger
	structurer  *tables.Structurer
	tables      *tablemeta.Analyzer
	images      *imagemeta.Analyzer
	splitter    *chunk.Splitter
	assembler   *chunk.Assembler
	extractOpts []extract.Option
}

// New creates a pipeline that embeds with embedder
func New(embedder *embed.ContentEmbedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		embedder:   embedder,
		cfg:        DefaultConfig(),
		logger:     logging.Discard(),
		structurer: tables.NewStructurer(),
		tables:     tablemeta.New(tablemeta.DefaultConfig()),
		images:     imagemeta.New(imagemeta.DefaultConfig()),
		assembler:  chunk.NewAssembler(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.splitter == nil {
		s := p.cfg.Splitter
		p.splitter = &s
	}
	return p
}

// Config returns the effective configuration
func (p *Pipeline) Config() Config {
	return p.cfg
}

// sourceRegion is an extracted region with its document-wide order
type sourceRegion struct {
	region model.RawRegion
	order  int
}

// pending is a structured unit waiting for its embedding
type pending struct {
	unit  chunk.Unit
	page  int
	index int

	text    string
	table   *model.TableContent
	tableMD *model.TableMetadata
	image   *model.ImageContent
	imageMD *model.ImageMetadata
}

// outcome is the structuring result of one region
type outcome struct {
	units []*pending
	empty bool
	diag  *Diagnostic
}

// Process runs one document through the state machine. The Result is
// always returned; the error is a *DocumentUnprocessableError, a permanent
// *embed.ServiceError, or wraps ctx.Err() after cancellation.
func (p *Pipeline) Process(ctx context.Context, doc Document) (*Result, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	res := &Result{
		DocumentID: doc.ID,
		Name:       doc.Name,
		State:      Received,
		States:     []State{Received},
	}

	log := p.logger.WithFields(logrus.Fields{"document_id": doc.ID, "name": doc.Name})
	log.WithFields(logrus.Fields{"mime": doc.MIMEType, "bytes": len(doc.Data)}).Info("processing document")

	err := p.run(ctx, doc, res)

	sortDiagnostics(res.Diagnostics)
	for _, d := range res.Diagnostics {
		entry := log.WithFields(logrus.Fields{"page": d.Page, "region": d.Region, "stage": d.Stage})
		if d.Err != nil {
			entry = entry.WithError(d.Err)
		}
		entry.Warn(d.Reason)
	}

	entry := log.WithFields(logrus.Fields{
		"state":     res.State.String(),
		"chunks":    len(res.Chunks),
		"regions":   res.Regions,
		"processed": res.Processed,
	})
	if err != nil {
		entry.WithError(err).Error("document failed")
	} else {
		entry.Info("document processed")
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, doc Document, res *Result) error {
	if err := ctx.Err(); err != nil {
		return p.cancel(res, err)
	}

	res.transition(Extracting)
	regions, err := p.extract(ctx, doc, res)
	if err != nil {
		var ue *DocumentUnprocessableError
		if errors.As(err, &ue) {
			res.transition(Failed)
			return err
		}
		return p.cancel(res, err)
	}

	res.transition(Structuring)
	outcomes := p.structure(ctx, regions)
	if err := ctx.Err(); err != nil {
		return p.cancel(res, err)
	}

	var work []*pending
	for _, o := range outcomes {
		if o.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *o.diag)
		}
		work = append(work, o.units...)
	}

	res.transition(Embedding)
	embedErrs, err := p.embed(ctx, work)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Page:   0,
			Region: -1,
			Stage:  StageEmbed,
			Reason: "permanent embedding error; document halted",
			Err:    err,
		})
		res.transition(Failed)
		return err
	}
	if err := ctx.Err(); err != nil {
		return p.cancel(res, err)
	}

	units := make([]chunk.Unit, 0, len(work))
	produced := make(map[int]bool)
	for i, w := range work {
		if embedErrs[i] != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Page:   w.page,
				Region: w.index,
				Stage:  StageEmbed,
				Reason: "embedding failed",
				Err:    embedErrs[i],
			})
			continue
		}
		units = append(units, w.unit)
		produced[w.unit.Region] = true
	}

	res.Processed = len(produced)
	for _, o := range outcomes {
		if o.empty {
			res.Processed++
		}
	}

	res.Chunks = p.assembler.Assemble(res.DocumentID, units)
	res.transition(Assembled)
	return nil
}

// cancel fails the document after cancellation
func (p *Pipeline) cancel(res *Result, err error) error {
	res.Diagnostics = append(res.Diagnostics, Diagnostic{
		Page:   0,
		Region: -1,
		Stage:  StageCancel,
		Reason: fmt.Sprintf("processing cancelled during %s", res.State),
		Err:    err,
	})
	res.transition(Failed)
	return fmt.Errorf("document %s cancelled: %w", res.DocumentID, err)
}

// extract reads every page sequentially. Failed pages become diagnostics;
// the document is unprocessable only when it cannot be opened or every page
// failed.
func (p *Pipeline) extract(ctx context.Context, doc Document, res *Result) ([]sourceRegion, error) {
	opts := append([]extract.Option{extract.WithLogger(p.logger)}, p.extractOpts...)
	d, err := extract.Open(doc.Data, doc.MIMEType, p.cfg.Extract, opts...)
	if err != nil {
		return nil, &DocumentUnprocessableError{DocumentID: res.DocumentID, Err: err}
	}
	defer d.Close()

	res.Format = d.Format().String()
	res.Pages = d.PageCount()

	var regions []sourceRegion
	failed := 0
	for {
		page, err := d.NextContext(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, w := range page.Warnings {
			res.Diagnostics = append(res.Diagnostics, extractDiagnostic(page.Number, w))
		}
		if page.Err != nil {
			failed++
			res.Regions++
			res.Diagnostics = append(res.Diagnostics, extractDiagnostic(page.Number, page.Err))
			continue
		}
		for _, r := range page.Regions {
			regions = append(regions, sourceRegion{region: r, order: len(regions)})
		}
	}

	if res.Pages > 0 && failed == res.Pages {
		return nil, &DocumentUnprocessableError{
			DocumentID: res.DocumentID,
			Err:        fmt.Errorf("all %d pages failed to parse", failed),
		}
	}
	res.Regions += len(regions)
	return regions, nil
}

func extractDiagnostic(page int, err error) Diagnostic {
	d := Diagnostic{Page: page, Region: -1, Stage: StageExtract, Reason: "page could not be read", Err: err}
	var re *extract.RegionExtractionError
	if errors.As(err, &re) {
		d.Region = re.Region
		d.Reason = re.Reason
		d.Err = re.Err
	}
	return d
}

// structure prepares every region on the bounded worker pool. Structuring
// and analysis are pure CPU work. No task is scheduled once ctx is done.
func (p *Pipeline) structure(ctx context.Context, regions []sourceRegion) []outcome {
	outcomes := make([]outcome, len(regions))

	var g errgroup.Group
	g.SetLimit(p.cfg.RegionWorkers)
	for i := range regions {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = p.structureRegion(regions[i])
			return nil
		})
	}
	g.Wait()
	return outcomes
}

func (p *Pipeline) structureRegion(sr sourceRegion) (o outcome) {
	r := sr.region
	fail := func(stage, reason string, err error) outcome {
		return outcome{diag: &Diagnostic{Page: r.PageNumber, Region: r.Index, Stage: stage, Reason: reason, Err: err}}
	}
	defer func() {
		if v := recover(); v != nil {
			o = fail(StageStructure, "region processing panicked", fmt.Errorf("%v", v))
		}
	}()

	newUnit := func(part int, md model.Metadata, display string) *pending {
		return &pending{
			unit: chunk.Unit{
				Page:        r.PageNumber,
				Region:      sr.order,
				Part:        part,
				Type:        r.Type.ChunkType(),
				Metadata:    md,
				DisplayText: display,
			},
			page:  r.PageNumber,
			index: r.Index,
		}
	}

	switch r.Type {
	case model.RegionText:
		passages := p.splitter.Split(r.Text)
		if len(passages) == 0 {
			return outcome{empty: true}
		}
		for i, passage := range passages {
			u := newUnit(i, model.TextMetadata{}, passage)
			u.text = passage
			o.units = append(o.units, u)
		}
		return o

	case model.RegionTable:
		content, err := p.structurer.Structure(r)
		if err != nil {
			return fail(StageStructure, "table could not be structured", err)
		}
		md := p.tables.Analyze(content)
		u := newUnit(0, md, chunk.TableLabel(md))
		u.table, u.tableMD = &content, md
		o.units = append(o.units, u)
		return o

	case model.RegionImage:
		img, err := imagemeta.Decode(r.Data)
		if err != nil {
			return fail(StageStructure, "image could not be decoded", err)
		}
		md, err := p.images.Analyze(img)
		if err != nil {
			return fail(StageAnalyze, "image could not be analyzed", err)
		}
		u := newUnit(0, md, chunk.ImageLabel(md))
		u.image, u.imageMD = &img, md
		o.units = append(o.units, u)
		return o

	default:
		return fail(StageStructure, fmt.Sprintf("unknown region type %s", r.Type), nil)
	}
}

// embed embeds every unit on the bounded worker pool. Running calls use a
// context detached from cancellation, so they finish (within the client's
// per-call timeout) even when ctx is cancelled. A permanent error stops all
// tasks that have not started and is returned; transient errors are
// returned per unit.
func (p *Pipeline) embed(ctx context.Context, work []*pending) ([]error, error) {
	errs := make([]error, len(work))
	callCtx := context.WithoutCancel(ctx)

	var halted atomic.Bool
	var g errgroup.Group
	g.SetLimit(p.cfg.RegionWorkers)
	for i, w := range work {
		if halted.Load() || ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if halted.Load() || ctx.Err() != nil {
				return nil
			}
			vec, err := p.embedOne(callCtx, w)
			if err != nil {
				if embed.IsPermanent(err) {
					halted.Store(true)
					return err
				}
				errs[i] = err
				return nil
			}
			w.unit.Embedding = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errs, err
	}
	return errs, nil
}

func (p *Pipeline) embedOne(ctx context.Context, w *pending) ([]float32, error) {
	switch {
	case w.table != nil:
		return p.embedder.EmbedTable(ctx, *w.table, w.tableMD)
	case w.image != nil:
		return p.embedder.EmbedImage(ctx, *w.image, w.imageMD)
	default:
		return p.embedder.EmbedText(ctx, w.text)
	}
}
