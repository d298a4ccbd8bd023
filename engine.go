package kanon

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/viant/kanon/column"
	"github.com/viant/kanon/dataset"
	"github.com/viant/kanon/encoder"
	"github.com/viant/kanon/eqclass"
	"github.com/viant/kanon/planner"
	"github.com/viant/kanon/resolver"
	"go.uber.org/zap"
)

// Engine fits merge plans and applies them.
type Engine struct {
	config Config
	set    *column.Set
	logger *zap.Logger
	rng    *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRand sets the random source used to break representative ties. Without
// it every Transform draws from a fresh source seeded with the plan seed.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// New validates config and creates an engine.
func New(config Config, opts ...Option) (*Engine, error) {
	set, err := config.Validate()
	if err != nil {
		return nil, err
	}
	e := &Engine{config: config, set: set, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Fit builds the merge plan for ds.
func (e *Engine) Fit(ds *dataset.Dataset) (*Plan, error) {
	started := time.Now()
	k := e.config.KTarget
	table, err := eqclass.Build(ds, e.set.QIDs(), e.config.PrivacyUnit, k)
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	enc, err := encoder.New(table.QIDs(), e.set.IndexCategorical(), e.set.IndexNumeric())
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	vectors, err := enc.FitTransform(table.Tuples())
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	counts := table.Counts()
	members, subset := undersized(counts, vectors, k)
	idx, err := newIndex(&e.config, e.set)
	if err != nil {
		return nil, err
	}
	if err := idx.Build(subset); err != nil {
		return nil, fmt.Errorf("kanon: build index: %w", err)
	}
	result, err := planner.Plan(planner.Input{
		Counts:  counts,
		Vectors: vectors,
		Index:   idx,
		Members: members,
	}, k, planner.WithWiden(e.config.Widen), planner.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	plan := &Plan{
		id:      uuid.NewString(),
		created: time.Now().UTC(),
		config:  e.config,
		set:     e.set,
		table:   table,
		encoder: enc,
		vectors: vectors,
		members: members,
		index:   idx,
		result:  result,
	}
	stats := plan.Stats()
	e.logger.Info("fitted plan",
		zap.String("plan", plan.id),
		zap.Int("rows", ds.Len()),
		zap.Int("classes", stats.Classes),
		zap.Int("safe", stats.Safe),
		zap.Int("groups", stats.Groups),
		zap.Int("unresolved", stats.Unresolved),
		zap.Duration("elapsed", time.Since(started)))
	return plan, nil
}

// Transform returns a copy of ds with the plan applied. Rows whose class is
// safe, unresolved or unknown to the plan are copied unchanged.
func (e *Engine) Transform(ds *dataset.Dataset, plan *Plan) (*dataset.Dataset, error) {
	if plan == nil {
		return nil, fmt.Errorf("kanon: nil plan")
	}
	classOf, err := plan.table.Assign(ds)
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	unseen := 0
	for _, c := range classOf {
		if c < 0 {
			unseen++
		}
	}
	rng := e.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(plan.config.Seed, plan.config.Seed))
	}
	variant := resolver.Fair
	if plan.config.Stable {
		variant = resolver.Stable
	}
	out, rewritten, err := resolver.New(plan.set, rng, variant).Reconstruct(ds, classOf, plan.result.Assign)
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	e.logger.Info("transformed dataset",
		zap.String("plan", plan.id),
		zap.Int("rows", ds.Len()),
		zap.Int("rewritten", rewritten),
		zap.Int("unseen", unseen))
	return out, nil
}

// FitTransform fits a plan on ds and applies it to ds.
func (e *Engine) FitTransform(ds *dataset.Dataset) (*dataset.Dataset, *Plan, error) {
	plan, err := e.Fit(ds)
	if err != nil {
		return nil, nil, err
	}
	out, err := e.Transform(ds, plan)
	if err != nil {
		return nil, nil, err
	}
	return out, plan, nil
}

// undersized returns the classes below k and their vectors.
func undersized(counts []int, vectors [][]float32, k int) ([]int, [][]float32) {
	members := make([]int, 0, len(counts))
	var subset [][]float32
	for c, count := range counts {
		if count < k {
			members = append(members, c)
			subset = append(subset, vectors[c])
		}
	}
	return members, subset
}
