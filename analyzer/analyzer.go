// Package analyzer orchestrates block-by-block rule execution over a
// document: it parses structural blocks, fans rule dispatch out across a
// bounded worker pool, classifies content type once per document, and
// aggregates the results into statistics and modular compliance checks.
package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/confidence"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// EventSink is the narrow capability the analyzer emits progress through
// (design note: "an event bus capability ... production wiring supplies a
// real bus, tests supply a recording sink"). events.Directory satisfies
// this without the analyzer importing the events package.
type EventSink interface {
	Emit(sessionID string, eventType string, payload any)
}

// noopSink discards every event; used when Analyze is called without a
// session.
type noopSink struct{}

func (noopSink) Emit(string, string, any) {}

// Options configures one Analyze call.
type Options struct {
	Hint              blocks.FormatHint
	SessionID         string
	ContentType       *domain.ContentType // explicit override; nil means classify
	MaxWorkers        int                 // 0 means runtime.NumCPU()
	ThresholdOverride *float64
}

// Analyzer ties the structural parser, rule registry, and confidence
// pipeline together (spec component F).
type Analyzer struct {
	registry *rules.Registry
	pipeline *confidence.Pipeline
	sink     EventSink
}

// New builds an Analyzer. sink may be nil, in which case events are
// discarded.
func New(registry *rules.Registry, pipeline *confidence.Pipeline, sink EventSink) *Analyzer {
	if sink == nil {
		sink = noopSink{}
	}
	return &Analyzer{registry: registry, pipeline: pipeline, sink: sink}
}

// BlockResult holds every normalized error found in one block.
type BlockResult struct {
	Block  blocks.Block
	Errors []rules.Error
}

// Statistics are the document-wide readability and composition metrics
// (spec §4.4 step 5).
type Statistics struct {
	WordCount           int
	SentenceCount       int
	ParagraphCount      int
	AverageSentenceLen  float64
	PassiveVoiceRatio   float64
	ComplexWordRatio    float64
	VocabularyDiversity float64
	FleschReadingEase   float64
	FleschKincaidGrade  float64
	GunningFog          float64
	SMOG                float64
}

// AnalysisResult is the full output of one Analyze call (spec §3,
// "AnalysisResult").
type AnalysisResult struct {
	Blocks               []blocks.Block
	ByBlock              map[string][]rules.Error
	ByCategory           map[domain.Category][]rules.Error
	Statistics           Statistics
	Compliance           []ComplianceFinding
	ContentType          domain.ContentType
	ProcessingTime       time.Duration
	ThresholdFingerprint string
}

// Analyze runs the full pipeline over text: parse into blocks, classify
// content type once, fan rule dispatch out across a bounded worker pool,
// and aggregate (spec §4.4 steps 1-7).
func (a *Analyzer) Analyze(ctx context.Context, text string, tk toolkit.Toolkit, opts Options) (*AnalysisResult, error) {
	start := time.Now()

	hint := opts.Hint
	if hint == "" {
		hint = blocks.FormatAuto
	}
	parsed, err := blocks.Parse(text, hint)
	if err != nil {
		return nil, fmt.Errorf("analyzer: parsing blocks: %w", err)
	}

	a.emit(opts.SessionID, "analysis_start", map[string]any{"block_count": len(parsed)})

	contentType := domain.ContentGeneral
	if opts.ContentType != nil {
		contentType = *opts.ContentType
	} else {
		contentType = confidence.Classify(text)
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type indexedResult struct {
		index  int
		result BlockResult
	}

	results := make([]indexedResult, 0, len(parsed))
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var completed int64
	var progressMu sync.Mutex

	for i, block := range parsed {
		i, block := i, block
		g.Go(func() error {
			if !block.IsProse() {
				resultsMu.Lock()
				results = append(results, indexedResult{index: i, result: BlockResult{Block: block}})
				resultsMu.Unlock()
				return nil
			}

			analysis, aerr := tk.Analyze(gctx, block.Text)
			if aerr != nil {
				if gctx.Err() != nil {
					return fmt.Errorf("analyzing block %s: %w", block.ID, aerr)
				}
				// A toolkit failure is not fatal: the block falls back to
				// punctuation-based sentence splitting.
				analysis, _ = toolkit.NewDegraded().Analyze(gctx, block.Text)
			}

			rctx := &rules.Context{
				ContentType:       contentType,
				BlockType:         block.Type,
				ThresholdOverride: opts.ThresholdOverride,
			}

			dispatches := a.registry.Dispatch(gctx, block.Type, block.Text, analysis.Sentences, tk, rctx)

			var blockErrors []rules.Error
			base := rules.NewBase(a.pipeline)
			for _, d := range dispatches {
				if d.Err != nil {
					continue
				}
				for _, raw := range d.Errors {
					var category domain.Category
					if rule := findRule(a.registry, d.RuleID); rule != nil {
						category = rule.Category()
					}
					blockErrors = append(blockErrors, base.MakeError(d.RuleID, category, raw, contentType, rctx))
				}
			}

			// Errors must be sorted by (sentence_index, start, rule_id)
			// regardless of dispatch order, which follows rule registration
			// order rather than where in the text each rule's findings fall.
			sort.Slice(blockErrors, func(i, j int) bool {
				a, b := blockErrors[i], blockErrors[j]
				if a.SentenceIndex != b.SentenceIndex {
					return a.SentenceIndex < b.SentenceIndex
				}
				if a.Start != b.Start {
					return a.Start < b.Start
				}
				return a.RuleID < b.RuleID
			})

			resultsMu.Lock()
			results = append(results, indexedResult{index: i, result: BlockResult{Block: block, Errors: blockErrors}})
			resultsMu.Unlock()

			progressMu.Lock()
			completed++
			pct := 40 + int(float64(completed)/float64(len(parsed))*30)
			progressMu.Unlock()
			a.emit(opts.SessionID, "analysis_progress", map[string]any{"percent": pct, "block_id": block.ID})

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.emit(opts.SessionID, "analysis_failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	byBlock := make(map[string][]rules.Error, len(parsed))
	byCategory := make(map[domain.Category][]rules.Error)
	var allErrors []rules.Error
	orderedBlocks := make([]blocks.Block, 0, len(parsed))

	for _, r := range results {
		orderedBlocks = append(orderedBlocks, r.result.Block)
		if len(r.result.Errors) > 0 {
			byBlock[r.result.Block.ID] = r.result.Errors
			for _, e := range r.result.Errors {
				byCategory[e.Category] = append(byCategory[e.Category], e)
				allErrors = append(allErrors, e)
			}
		}
	}

	stats := computeStatistics(orderedBlocks, allErrors)
	compliance := runComplianceChecks(orderedBlocks, classifyDocType(orderedBlocks))

	result := &AnalysisResult{
		Blocks:               orderedBlocks,
		ByBlock:              byBlock,
		ByCategory:           byCategory,
		Statistics:           stats,
		Compliance:           compliance,
		ContentType:          contentType,
		ProcessingTime:       time.Since(start),
		ThresholdFingerprint: thresholdFingerprint(a.pipeline),
	}

	a.emit(opts.SessionID, "analysis_complete", map[string]any{
		"error_count":     len(allErrors),
		"processing_time": result.ProcessingTime.String(),
	})

	return result, nil
}

func (a *Analyzer) emit(sessionID, eventType string, payload any) {
	a.sink.Emit(sessionID, eventType, payload)
}

func findRule(registry *rules.Registry, ruleID string) rules.Rule {
	for _, category := range domain.AllCategories {
		for _, r := range registry.ForCategory(category) {
			if r.RuleID() == ruleID {
				return r
			}
		}
	}
	return nil
}

func thresholdFingerprint(p *confidence.Pipeline) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("threshold:%.4f", p.Threshold())
}
