package kanon

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/kanon/column"
	"github.com/viant/kanon/dataset"
	"github.com/viant/kanon/encoder"
	"github.com/viant/kanon/eqclass"
	"github.com/viant/kanon/index"
	"github.com/viant/kanon/planner"
)

// Plan is the immutable outcome of Fit.
type Plan struct {
	id      string
	created time.Time
	config  Config
	set     *column.Set
	table   *eqclass.Table
	encoder *encoder.Encoder
	vectors [][]float32
	members []int
	index   index.Index
	result  *planner.Result
}

// Stats summarizes a plan.
type Stats struct {
	Classes int `json:"classes"`
	// Safe counts classes that already meet the target.
	Safe       int `json:"safe"`
	Groups     int `json:"groups"`
	Grouped    int `json:"grouped"`
	Unresolved int `json:"unresolved"`
}

func (p *Plan) ID() string { return p.id }

func (p *Plan) Created() time.Time { return p.created }

// Config returns the configuration the plan was fitted with.
func (p *Plan) Config() Config { return p.config }

// Classes returns the equivalence class table; callers must not modify it.
func (p *Plan) Classes() *eqclass.Table { return p.table }

// Groups returns a copy of the merge groups.
func (p *Plan) Groups() []planner.Group {
	out := make([]planner.Group, len(p.result.Groups))
	for i, g := range p.result.Groups {
		out[i] = planner.Group{ID: g.ID, KCount: g.KCount, Members: append([]int(nil), g.Members...)}
	}
	return out
}

// GroupOf returns the group id of a class, or planner.Unset.
func (p *Plan) GroupOf(class int) int {
	if class < 0 || class >= len(p.result.Assign) {
		return planner.Unset
	}
	return p.result.Assign[class]
}

// Unresolved returns the classes left below the target.
func (p *Plan) Unresolved() []int { return append([]int(nil), p.result.Unresolved...) }

// Stats returns plan counters.
func (p *Plan) Stats() Stats {
	s := Stats{Classes: p.table.Len(), Groups: len(p.result.Groups), Unresolved: len(p.result.Unresolved)}
	s.Safe = s.Classes - len(p.members)
	for _, g := range p.result.Groups {
		s.Grouped += len(g.Members)
	}
	return s
}

type planRecord struct {
	ID      string           `json:"id"`
	Created time.Time        `json:"created"`
	Config  Config           `json:"config"`
	QIDs    []string         `json:"qids"`
	Classes []classRecord    `json:"classes"`
	Encoder *encoder.Encoder `json:"encoder"`
	Members []int            `json:"members"`
	Index   []byte           `json:"index"`
	Result  *planner.Result  `json:"result"`
}

type classRecord struct {
	Values []dataset.Value `json:"values"`
	KCount int             `json:"kCount"`
}

// MarshalBinary encodes the plan as a JSON document with the index embedded
// in its own binary format.
func (p *Plan) MarshalBinary() ([]byte, error) {
	indexData, err := p.index.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("kanon: marshal index: %w", err)
	}
	record := planRecord{
		ID:      p.id,
		Created: p.created,
		Config:  p.config,
		QIDs:    p.table.QIDs(),
		Classes: make([]classRecord, p.table.Len()),
		Encoder: p.encoder,
		Members: p.members,
		Index:   indexData,
		Result:  p.result,
	}
	for i := range record.Classes {
		c := p.table.Class(i)
		record.Classes[i] = classRecord{Values: c.Values, KCount: c.KCount}
	}
	return json.Marshal(record)
}

// UnmarshalPlan decodes a plan produced by Plan.MarshalBinary.
func UnmarshalPlan(data []byte) (*Plan, error) {
	record := planRecord{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("kanon: decode plan: %w", err)
	}
	if record.Encoder == nil || record.Result == nil {
		return nil, fmt.Errorf("kanon: decode plan: incomplete plan %q", record.ID)
	}
	set, err := record.Config.Validate()
	if err != nil {
		return nil, err
	}
	table := eqclass.New(record.QIDs)
	for _, c := range record.Classes {
		if _, err := table.Add(c.Values, c.KCount); err != nil {
			return nil, fmt.Errorf("kanon: decode plan: %w", err)
		}
	}
	if len(record.Result.Assign) != table.Len() {
		return nil, fmt.Errorf("kanon: decode plan: %d assignments for %d classes", len(record.Result.Assign), table.Len())
	}
	vectors, err := record.Encoder.Transform(table.Tuples())
	if err != nil {
		return nil, fmt.Errorf("kanon: decode plan: %w", err)
	}
	idx, err := emptyIndex(record.Config.Index)
	if err != nil {
		return nil, err
	}
	if err := idx.UnmarshalBinary(record.Index); err != nil {
		return nil, fmt.Errorf("kanon: decode plan: %w", err)
	}
	if idx.Len() != len(record.Members) {
		return nil, fmt.Errorf("kanon: decode plan: index holds %d classes, expected %d", idx.Len(), len(record.Members))
	}
	return &Plan{
		id:      record.ID,
		created: record.Created,
		config:  record.Config,
		set:     set,
		table:   table,
		encoder: record.Encoder,
		vectors: vectors,
		members: record.Members,
		index:   idx,
		result:  record.Result,
	}, nil
}

// Nearest returns up to n under-sized classes closest to class, as ranked by
// the plan's neighbor index.
func (p *Plan) Nearest(class, n int) ([]int, error) {
	if class < 0 || class >= len(p.vectors) {
		return nil, fmt.Errorf("kanon: class %d out of range", class)
	}
	ids, _, err := p.index.Query(p.vectors[class], n)
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = p.members[id]
	}
	return out, nil
}

// Vector returns a copy of the encoded vector of a class, or nil when class
// is out of range.
func (p *Plan) Vector(class int) []float32 {
	if class < 0 || class >= len(p.vectors) {
		return nil
	}
	return append([]float32(nil), p.vectors[class]...)
}
