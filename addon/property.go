package addon

import (
	"strconv"

	"github.com/pkg/errors"
)

// Kind is the value type of a Property.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Property declares a user editable setting shared by operators.
type Property struct {
	ID          string
	Kind        Kind
	Name        string
	Description string
	// Default must match Kind: bool, int or float64.
	Default any
	// Min is the smallest accepted value of numeric properties.
	Min *float64
	// Precision is the number of decimals shown for floats. Zero shows the
	// shortest exact representation.
	Precision int
}

// Minimum returns a pointer to m for use as Property.Min.
func Minimum(m float64) *float64 { return &m }

func (p Property) check(val any) (any, error) {
	var num float64
	switch p.Kind {
	case KindBool:
		if _, ok := val.(bool); !ok {
			return nil, errors.Errorf("property %q: want bool, got %T", p.ID, val)
		}
		return val, nil
	case KindInt:
		i, ok := val.(int)
		if !ok {
			return nil, errors.Errorf("property %q: want int, got %T", p.ID, val)
		}
		num = float64(i)
	case KindFloat:
		switch f := val.(type) {
		case float64:
			num = f
		case int:
			num = float64(f)
			val = num
		default:
			return nil, errors.Errorf("property %q: want float, got %T", p.ID, val)
		}
	default:
		return nil, errors.Errorf("property %q: invalid kind %v", p.ID, p.Kind)
	}
	if p.Min != nil && num < *p.Min {
		return nil, errors.Errorf("property %q: %v below minimum %v", p.ID, val, *p.Min)
	}
	return val, nil
}

func (p Property) parse(s string) (any, error) {
	switch p.Kind {
	case KindBool:
		return strconv.ParseBool(s)
	case KindInt:
		return strconv.Atoi(s)
	case KindFloat:
		return strconv.ParseFloat(s, 64)
	}
	return nil, errors.Errorf("property %q: invalid kind %v", p.ID, p.Kind)
}

func (p Property) format(val any) string {
	switch v := val.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		if p.Precision > 0 {
			return strconv.FormatFloat(v, 'f', p.Precision, 64)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}

// Values holds the current value of every declared property.
type Values struct {
	props map[string]Property
	vals  map[string]any
	order []string
}

// NewValues returns an empty property store.
func NewValues() *Values {
	return &Values{props: make(map[string]Property), vals: make(map[string]any)}
}

// Declare adds p with its default value.
func (v *Values) Declare(p Property) error {
	if _, ok := v.props[p.ID]; ok {
		return errors.Wrapf(ErrDuplicate, "property %q", p.ID)
	}
	def, err := p.check(p.Default)
	if err != nil {
		return errors.Wrap(err, "default")
	}
	v.props[p.ID] = p
	v.vals[p.ID] = def
	v.order = append(v.order, p.ID)
	return nil
}

func (v *Values) remove(id string) {
	delete(v.props, id)
	delete(v.vals, id)
	for i, o := range v.order {
		if o == id {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Property returns the declaration of id.
func (v *Values) Property(id string) (Property, bool) {
	p, ok := v.props[id]
	return p, ok
}

// Properties returns every declaration in declaration order.
func (v *Values) Properties() []Property {
	props := make([]Property, len(v.order))
	for i, id := range v.order {
		props[i] = v.props[id]
	}
	return props
}

// Set stores val after checking its type and minimum.
func (v *Values) Set(id string, val any) error {
	p, ok := v.props[id]
	if !ok {
		return errors.Errorf("unknown property %q", id)
	}
	val, err := p.check(val)
	if err != nil {
		return err
	}
	v.vals[id] = val
	return nil
}

// SetString parses s according to the kind of id and stores it.
func (v *Values) SetString(id, s string) error {
	p, ok := v.props[id]
	if !ok {
		return errors.Errorf("unknown property %q", id)
	}
	val, err := p.parse(s)
	if err != nil {
		return errors.Wrapf(err, "property %q", id)
	}
	return v.Set(id, val)
}

// String formats the value of id.
func (v *Values) String(id string) string {
	return v.props[id].format(v.vals[id])
}

func (v *Values) Bool(id string) (bool, error) {
	b, ok := v.vals[id].(bool)
	if !ok {
		return false, errors.Errorf("property %q is not a declared bool", id)
	}
	return b, nil
}

func (v *Values) Int(id string) (int, error) {
	i, ok := v.vals[id].(int)
	if !ok {
		return 0, errors.Errorf("property %q is not a declared int", id)
	}
	return i, nil
}

func (v *Values) Float(id string) (float64, error) {
	f, ok := v.vals[id].(float64)
	if !ok {
		return 0, errors.Errorf("property %q is not a declared float", id)
	}
	return f, nil
}
