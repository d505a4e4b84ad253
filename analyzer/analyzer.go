// Package analyzer orchestrates the full pipeline (spec.md §2): XML Reader
// -> State-Tree Builder (which invokes Executable-Content Parser and Invoke
// Resolver) -> Model Resolver -> Feature Detector -> emitted Model.
//
// Grounded on the teacher's mcp/client.go tracer idiom (package-level
// otel.Tracer var, one span per request phase) and validator.Config's
// dependency-injection pattern for pluggable hooks.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/scxmlc/frontend/builder"
	"github.com/scxmlc/frontend/feature"
	"github.com/scxmlc/frontend/invoke"
	"github.com/scxmlc/frontend/model"
	"github.com/scxmlc/frontend/resolve"
	"github.com/scxmlc/frontend/xmlreader"
)

var tracer = otel.Tracer("github.com/scxmlc/frontend/analyzer")

// Config parameterizes an analysis run. MaxInvokeDepth bounds recursive
// analysis of inline-extracted and src-referenced child documents so a
// cyclic invoke graph (child invoking its own ancestor) cannot recurse
// unboundedly; spec.md §5 notes each child document has its own Model
// instance and does not specify a depth bound for the recursion itself, so
// this front-end adds one defensively.
type Config struct {
	Logger         *slog.Logger
	MaxInvokeDepth int
}

// DefaultMaxInvokeDepth is used when Config.MaxInvokeDepth is zero.
const DefaultMaxInvokeDepth = 32

// Analyzer runs the pipeline for one or more documents, sharing a depth
// counter across recursive invoke analysis.
type Analyzer struct {
	cfg   Config
	depth int
}

// New returns an Analyzer configured per cfg, filling in defaults.
func New(cfg Config) *Analyzer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxInvokeDepth == 0 {
		cfg.MaxInvokeDepth = DefaultMaxInvokeDepth
	}
	return &Analyzer{cfg: cfg}
}

// AnalyzeFile reads, builds, resolves, and feature-detects the SCXML
// document at path, returning its Model.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*model.Model, error) {
	return a.analyze(ctx, path, nil)
}

// analyze is the recursive entry point; src, when non-nil, is already-read
// document text (used when the Invoke Resolver has just written a sibling
// file and wants it re-read rather than re-opened from disk redundantly —
// currently always nil since invoke.Resolve hands back only a path, kept as
// a seam for a future in-memory variant per spec.md §9's open design note).
func (a *Analyzer) analyze(ctx context.Context, path string, src *string) (*model.Model, error) {
	ctx, span := tracer.Start(ctx, "analyzer.Analyze", trace.WithAttributes(
		attribute.String("scxml.path", path),
		attribute.Int("scxml.invoke_depth", a.depth),
	))
	defer span.End()

	if a.depth > a.cfg.MaxInvokeDepth {
		err := fmt.Errorf("invoke recursion exceeded max depth %d at %s", a.cfg.MaxInvokeDepth, path)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var doc *xmlreader.Document
	var err error
	if src != nil {
		doc, err = xmlreader.ReadString(path, *src)
	} else {
		doc, err = xmlreader.ReadFile(path)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		err := fmt.Errorf("%s: no document element", path)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	modelName := stemName(path)
	dir := filepath.Dir(path)

	buildCfg := builder.Config{
		InvokeConfig: invoke.Config{
			Dir:             dir,
			ParentModelName: modelName,
			AnalyzeChild: func(childPath string) (invoke.ChildResult, error) {
				a.cfg.Logger.Debug("analyzing invoke child", "parent", path, "child", childPath)
				child := &Analyzer{cfg: a.cfg, depth: a.depth + 1}
				childModel, err := child.analyze(ctx, childPath, nil)
				if err != nil {
					return invoke.ChildResult{}, err
				}
				return invoke.ChildResult{NeedsJSEngine: childModel.NeedsJSEngine}, nil
			},
		},
	}

	m := builder.Build(root, modelName, buildCfg)

	resolve.Resolve(m, a.cfg.Logger)

	summary := feature.Detect(m)

	span.SetAttributes(
		attribute.Int("scxml.state_count", len(m.States)),
		attribute.Int("scxml.event_count", len(m.Events)),
		attribute.Bool("scxml.needs_jsengine", summary.NeedsJSEngine),
	)

	return m, nil
}

// stemName derives Model.Name from the input path's stem, never from an
// XML attribute, guaranteeing uniqueness across documents that happen to
// share an internal name (spec.md §3).
func stemName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
