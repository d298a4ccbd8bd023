package planner

import (
	"errors"
	"fmt"

	"github.com/viant/kanon/index"
	"go.uber.org/zap"
)

// Unset marks a class without a group.
const Unset = -1

// ErrMismatch is returned when the planner input is inconsistent.
var ErrMismatch = errors.New("planner: inconsistent input")

// Input describes the classes to plan.
type Input struct {
	// Counts holds the k-count of every class, by class index.
	Counts []int
	// Vectors holds the encoded vector of every class, by class index.
	Vectors [][]float32
	// Index is built over the vectors of the classes listed in Members, in
	// that order. Safe classes should be left out of it.
	Index index.Index
	// Members maps an index position to its class index; nil means identity.
	Members []int
}

// Group is a set of classes merged together.
type Group struct {
	ID      int   `json:"id"`
	KCount  int   `json:"kCount"`
	Members []int `json:"members"`
}

// Result is the outcome of planning.
type Result struct {
	Groups []*Group `json:"groups"`
	// Assign maps each class index to its group id, or Unset.
	Assign []int `json:"assign"`
	// Unresolved lists under-sized classes that found no group.
	Unresolved []int `json:"unresolved,omitempty"`
}

// Group returns the group of a class.
func (r *Result) Group(class int) (*Group, bool) {
	if class < 0 || class >= len(r.Assign) || r.Assign[class] == Unset {
		return nil, false
	}
	return r.Groups[r.Assign[class]], true
}

// Plan assigns every under-sized class to a group whose summed k-count
// reaches kTarget, when the neighbor index offers enough partners.
func Plan(in Input, kTarget int, opts ...Option) (*Result, error) {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if kTarget < 1 {
		return nil, fmt.Errorf("planner: invalid k target %d", kTarget)
	}
	if len(in.Vectors) != len(in.Counts) {
		return nil, fmt.Errorf("%w: %d vectors for %d classes", ErrMismatch, len(in.Vectors), len(in.Counts))
	}
	members := in.Members
	if members == nil {
		members = make([]int, len(in.Counts))
		for i := range members {
			members[i] = i
		}
	}
	if in.Index != nil && in.Index.Len() != len(members) {
		return nil, fmt.Errorf("%w: index holds %d items, expected %d", ErrMismatch, in.Index.Len(), len(members))
	}
	for _, c := range members {
		if c < 0 || c >= len(in.Counts) {
			return nil, fmt.Errorf("%w: member class %d out of range", ErrMismatch, c)
		}
	}

	p := &planner{in: in, members: members, k: kTarget, opts: o}
	p.result = &Result{Assign: make([]int, len(in.Counts))}
	for i := range p.result.Assign {
		p.result.Assign[i] = Unset
	}
	for c, count := range in.Counts {
		if count >= kTarget || p.result.Assign[c] != Unset {
			continue
		}
		if in.Index == nil {
			continue
		}
		if err := p.place(c); err != nil {
			return nil, err
		}
	}
	for c, count := range in.Counts {
		if count < kTarget && p.result.Assign[c] == Unset {
			p.result.Unresolved = append(p.result.Unresolved, c)
		}
	}
	if len(p.result.Unresolved) > 0 {
		o.logger.Warn("classes left below k target",
			zap.Int("k", kTarget),
			zap.Ints("classes", p.result.Unresolved))
	}
	return p.result, nil
}

type planner struct {
	in      Input
	members []int
	k       int
	opts    *options
	result  *Result
}

// place groups class c, widening the neighbor query on exhaustion.
func (p *planner) place(c int) error {
	n := p.k
	for attempt := 0; attempt <= p.opts.widen; attempt++ {
		neighbors, err := p.neighbors(c, n)
		if err != nil {
			return err
		}
		if p.walk(c, neighbors) {
			return nil
		}
		if n >= len(p.members) {
			break
		}
		n *= 2
	}
	p.opts.logger.Debug("class exhausted neighbors", zap.Int("class", c), zap.Int("kCount", p.in.Counts[c]))
	return nil
}

// neighbors returns the class indices nearest to c, excluding c.
func (p *planner) neighbors(c, n int) ([]int, error) {
	ids, _, err := p.in.Index.Query(p.in.Vectors[c], n)
	if err != nil {
		return nil, fmt.Errorf("planner: query class %d: %w", c, err)
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id < 0 || id >= len(p.members) {
			return nil, fmt.Errorf("%w: index returned id %d", ErrMismatch, id)
		}
		if class := p.members[id]; class != c {
			out = append(out, class)
		}
	}
	return out, nil
}

// walk applies the grouping rule to the ordered neighbors of c and reports
// whether c ended up in a group.
func (p *planner) walk(c int, neighbors []int) bool {
	sum := p.in.Counts[c]
	var pending []int
	for _, nb := range neighbors {
		if g := p.result.Assign[nb]; g != Unset {
			group := p.result.Groups[g]
			group.Members = append(group.Members, c)
			group.KCount += p.in.Counts[c]
			p.result.Assign[c] = g
			return true
		}
		pending = append(pending, nb)
		sum += p.in.Counts[nb]
		if sum >= p.k {
			group := &Group{ID: len(p.result.Groups), KCount: sum, Members: append([]int{c}, pending...)}
			p.result.Groups = append(p.result.Groups, group)
			for _, m := range group.Members {
				p.result.Assign[m] = group.ID
			}
			return true
		}
	}
	return false
}
