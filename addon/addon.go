// Package addon declares tool bundles made of properties, operators and panels
// and registers them in a Registry that can invoke operators by id.
package addon

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/scene"
)

var (
	// ErrUnknownOperator is returned when invoking an unregistered operator.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrDuplicate is returned when an addon, operator or property id is
	// already registered.
	ErrDuplicate = errors.New("duplicate id")
)

// Context is the state an operator runs against.
type Context struct {
	Scene  *scene.Scene
	Values *Values
	// Directory and Files carry a file selection for import operators.
	Directory string
	Files     []string
}

// Operator is an action exposed to the user.
type Operator interface {
	ID() string
	Label() string
	Execute(ctx *Context) error
}

type funcOperator struct {
	id, label string
	fn        func(*Context) error
}

// NewOperator returns an Operator running fn.
func NewOperator(id, label string, fn func(*Context) error) Operator {
	return &funcOperator{id: id, label: label, fn: fn}
}

func (op *funcOperator) ID() string                 { return op.id }
func (op *funcOperator) Label() string              { return op.label }
func (op *funcOperator) Execute(ctx *Context) error { return op.fn(ctx) }

// Item is one entry of a panel row. Exactly one of Property and Operator is
// set.
type Item struct {
	Property string
	Operator string
	// Text overrides the operator label.
	Text string
}

// Panel lays out properties and operators in rows.
type Panel struct {
	Label    string
	Location string
	Rows     [][]Item
}

// Addon bundles the declarations of one tool.
type Addon struct {
	Name        string
	Description string
	Category    string
	Properties  []Property
	Operators   []Operator
	Panels      []Panel
}

// Registry holds registered addons and their shared property values.
type Registry struct {
	values    *Values
	addons    map[string]*Addon
	operators map[string]Operator
	order     []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		values:    NewValues(),
		addons:    make(map[string]*Addon),
		operators: make(map[string]Operator),
	}
}

// Values returns the property store shared by registered addons.
func (r *Registry) Values() *Values { return r.values }

// Register adds a and its declarations. Nothing is registered on error.
func (r *Registry) Register(a *Addon) error {
	if _, ok := r.addons[a.Name]; ok {
		return errors.Wrapf(ErrDuplicate, "addon %q", a.Name)
	}
	seen := make(map[string]bool)
	for _, op := range a.Operators {
		if _, ok := r.operators[op.ID()]; ok || seen[op.ID()] {
			return errors.Wrapf(ErrDuplicate, "operator %q", op.ID())
		}
		seen[op.ID()] = true
	}
	for _, p := range a.Properties {
		if _, ok := r.values.Property(p.ID); ok || seen[p.ID] {
			return errors.Wrapf(ErrDuplicate, "property %q", p.ID)
		}
		if _, err := p.check(p.Default); err != nil {
			return errors.Wrapf(err, "addon %q", a.Name)
		}
		seen[p.ID] = true
	}
	for _, p := range a.Properties {
		if err := r.values.Declare(p); err != nil {
			return err
		}
	}
	for _, op := range a.Operators {
		r.operators[op.ID()] = op
	}
	r.addons[a.Name] = a
	r.order = append(r.order, a.Name)
	return nil
}

// Unregister removes a and its declarations.
func (r *Registry) Unregister(a *Addon) error {
	if r.addons[a.Name] != a {
		return errors.Errorf("addon %q not registered", a.Name)
	}
	for _, p := range a.Properties {
		r.values.remove(p.ID)
	}
	for _, op := range a.Operators {
		delete(r.operators, op.ID())
	}
	delete(r.addons, a.Name)
	for i, name := range r.order {
		if name == a.Name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Invoke runs operator id. A nil ctx.Values is replaced by the registry
// values.
func (r *Registry) Invoke(id string, ctx *Context) error {
	op, ok := r.operators[id]
	if !ok {
		return errors.Wrapf(ErrUnknownOperator, "%q", id)
	}
	if ctx == nil {
		ctx = &Context{}
	}
	if ctx.Values == nil {
		ctx.Values = r.values
	}
	return errors.Wrapf(op.Execute(ctx), "operator %s", id)
}

// Addons returns registered addons in registration order.
func (r *Registry) Addons() []*Addon {
	addons := make([]*Addon, len(r.order))
	for i, name := range r.order {
		addons[i] = r.addons[name]
	}
	return addons
}

// Operators returns registered operators sorted by id.
func (r *Registry) Operators() []Operator {
	ops := make([]Operator, 0, len(r.operators))
	for _, op := range r.operators {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID() < ops[j].ID() })
	return ops
}
