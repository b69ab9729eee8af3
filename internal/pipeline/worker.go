package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/rgower/typeset/internal/ai"
	"github.com/rgower/typeset/internal/block"
	"github.com/rgower/typeset/internal/classify"
	"github.com/rgower/typeset/internal/parser"
	"github.com/rgower/typeset/internal/sink"
	"github.com/rgower/typeset/internal/structure"
	"github.com/rgower/typeset/internal/styles"
)

// Worker processes a single conversion job: parse, structure (model
// path with rule-based fallback), arrange, and optionally push the
// finished document downstream.
type Worker struct {
	converter *ai.Orchestrator
	fallback  *ai.Fallback
	arranger  *structure.Arranger
	catalog   *styles.Catalog
	sink      *sink.Client
	log       *slog.Logger

	separatorSymbol string
}

func NewWorker(converter *ai.Orchestrator, fallback *ai.Fallback, arranger *structure.Arranger, catalog *styles.Catalog, sinkClient *sink.Client, log *slog.Logger, separatorSymbol string) *Worker {
	return &Worker{
		converter:       converter,
		fallback:        fallback,
		arranger:        arranger,
		catalog:         catalog,
		sink:            sinkClient,
		log:             log,
		separatorSymbol: separatorSymbol,
	}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusParsing, "parsing")
	src, err := parser.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title == "" {
		job.SetTitle(src.Title)
	}

	blocks := src.Blocks
	usedAI := false
	if src.NeedsStructuring() {
		job.SetStatus(StatusStructuring, "structuring")
		blocks, usedAI = w.structureText(ctx, job, src.Text)
	}
	job.SetUsedAI(usedAI)

	job.SetStatus(StatusArranging, "arranging")
	elements := w.arranger.Arrange(blocks)
	doc := w.buildDocument(job, elements, usedAI)
	job.SetResult(doc)

	if w.sink != nil {
		job.SetStatus(StatusPushing, "pushing")
		if err := w.sink.Push(ctx, doc); err != nil {
			// The finished document is still available; only the
			// downstream notification failed.
			log.Warn("sink push failed", "error", err)
			job.AddError(fmt.Sprintf("sink: %s", err))
		}
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete",
		"blocks", len(blocks),
		"elements", len(elements),
		"used_ai", usedAI)
}

// structureText tries the model-assisted path first and falls back to
// the rule-based converter when the ladder is exhausted for any chunk.
func (w *Worker) structureText(ctx context.Context, job *Job, text string) ([]block.Block, bool) {
	if w.converter != nil {
		chunksDone := 0
		w.converter.OnProgress = func(chunk, total, attempt int) {
			chunksDone = chunk
			job.SetChunkProgress(chunk, total, attempt)
		}
		if md, ok := w.converter.Convert(ctx, text); ok {
			job.SetChunkProgress(chunksDone+1, chunksDone+1, 0)
			return classify.Markdown(md), true
		}
		w.log.Info("model path failed, using rule-based converter", "job_id", job.ID)
	}
	return w.fallback.Convert(text, true), false
}

func (w *Worker) buildDocument(job *Job, elements []structure.Element, usedAI bool) *sink.Document {
	doc := &sink.Document{
		Title:           job.Title,
		UsedAI:          usedAI,
		SeparatorSymbol: w.separatorSymbol,
		Elements:        make([]sink.Element, 0, len(elements)),
	}
	for _, el := range elements {
		doc.Elements = append(doc.Elements, sink.Element{
			Element: el,
			Style:   w.catalog.For(styleKey(el), el.RenderLevel),
		})
	}
	return doc
}

// styleKey picks the catalog entry for an element. Opening quotes get
// the epigraph style; other body blocks share the body style.
func styleKey(el structure.Element) string {
	if el.Role == structure.RoleBody {
		if el.Block.Kind == block.KindBlockquote && el.Block.OpeningQuote {
			return "epigraph"
		}
		return "body"
	}
	return string(el.Role)
}
