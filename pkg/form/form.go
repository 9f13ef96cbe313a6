// Package form binds namespaced editor fields: display formatting, input parsing with
// sibling-field overrides, and localized required-field validation.
package form

import (
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/pkg/errors"
)

// ErrFieldNotFound is returned for names the form does not declare.
var ErrFieldNotFound = errors.New("form: field not found")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Widget names understood by the host UI.
const (
	WidgetSelectBox = "select-box"
	WidgetTextInput = "text-input"
)

// Option is one entry of a select box.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// Control describes how the host renders a field.
type Control struct {
	Widget      string   `json:"widget"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options,omitempty"`
	AllowEmpty  bool     `json:"allowEmpty"`
}

// Override sets a sibling field as part of a parse.
type Override struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParseResult is the stored value of a field plus the sibling values it implies.
type ParseResult struct {
	Value     string     `json:"value"`
	Overrides []Override `json:"overrides,omitempty"`
}

// Field declares one form field. Format turns a stored value into its displayed value,
// Parse turns user input into a stored value. Rules are validator tags; Messages maps a
// failing tag to an i18n key.
type Field struct {
	Name         string
	InitialValue string
	Rules        string
	Messages     map[string]string
	Control      Control
	Format       func(value string) string
	Parse        func(value string) ParseResult
}

// Values holds stored field values keyed by the field's short name.
type Values map[string]string

// Decode maps values onto dst by JSON field name.
func (v Values) Decode(dst any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "form: encode values")
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, "form: decode values")
	}
	return nil
}

// Errors maps the namespaced field name to a localized message.
type Errors map[string]string

func (e Errors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	msg := "form: validation failed:"
	for _, name := range names {
		msg += " " + name + ": " + e[name] + ";"
	}
	return msg
}

// FieldView is the serializable state of one field.
type FieldView struct {
	Name    string  `json:"name"`
	ID      string  `json:"id"`
	Value   string  `json:"value"`
	Display string  `json:"display"`
	Control Control `json:"control"`
}

// Form is a set of fields under a common name prefix. It is not safe for concurrent use.
type Form struct {
	prefix string
	fields []Field
	index  map[string]int
	values Values
}

// New creates a form and seeds every field with its initial value.
func New(prefix string, fields ...Field) *Form {
	f := &Form{
		prefix: prefix,
		fields: fields,
		index:  make(map[string]int, len(fields)),
		values: make(Values, len(fields)),
	}
	for i, field := range fields {
		f.index[field.Name] = i
		f.values[field.Name] = field.InitialValue
	}
	return f
}

func (f *Form) Prefix() string {
	return f.prefix
}

// FieldName returns the namespaced name of a field.
func (f *Form) FieldName(name string) string {
	if f.prefix == "" {
		return name
	}
	return f.prefix + "." + name
}

func (f *Form) Fields() []Field {
	return f.fields
}

func (f *Form) field(name string) (Field, bool) {
	i, ok := f.index[name]
	if !ok {
		return Field{}, false
	}
	return f.fields[i], true
}

// Value returns the stored value of a field.
func (f *Form) Value(name string) string {
	return f.values[name]
}

// Values returns a copy of the stored values.
func (f *Form) Values() Values {
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Display returns the formatted value of a field.
func (f *Form) Display(name string) string {
	field, ok := f.field(name)
	if !ok {
		return ""
	}
	v := f.values[name]
	if field.Format != nil {
		return field.Format(v)
	}
	return v
}

// Load replaces stored values for the given fields without parsing them.
// Fields missing from values keep their current value.
func (f *Form) Load(values Values) error {
	for name := range values {
		if _, ok := f.field(name); !ok {
			return errors.Wrapf(ErrFieldNotFound, "%s", f.FieldName(name))
		}
	}
	for name, v := range values {
		f.values[name] = v
	}
	return nil
}

// Submit loads raw values as a user would have typed them: every submitted field that has
// a parser goes through Change in declaration order, so overrides win over the raw values
// of the fields they target.
func (f *Form) Submit(values Values) error {
	if err := f.Load(values); err != nil {
		return err
	}
	for _, field := range f.fields {
		raw, ok := values[field.Name]
		if !ok || field.Parse == nil {
			continue
		}
		if _, err := f.Change(field.Name, raw); err != nil {
			return err
		}
	}
	return nil
}

// Change parses raw input for a field and stores the parsed value together with every
// override it produced. Either all of them are applied or none.
func (f *Form) Change(name, raw string) (ParseResult, error) {
	field, ok := f.field(name)
	if !ok {
		return ParseResult{}, errors.Wrapf(ErrFieldNotFound, "%s", f.FieldName(name))
	}

	res := ParseResult{Value: raw}
	if field.Parse != nil {
		res = field.Parse(raw)
	}

	for _, o := range res.Overrides {
		if _, ok := f.field(o.Name); !ok {
			return ParseResult{}, errors.Wrapf(ErrFieldNotFound, "override %s", f.FieldName(o.Name))
		}
	}

	f.values[name] = res.Value
	for _, o := range res.Overrides {
		f.values[o.Name] = o.Value
	}
	return res, nil
}

// Validate checks every field against its rules. An empty result means the form is valid.
func (f *Form) Validate(t i18n.Func) Errors {
	if t == nil {
		t = i18n.Identity
	}
	errs := Errors{}
	for _, field := range f.fields {
		if field.Rules == "" {
			continue
		}
		err := engine().Var(f.values[field.Name], field.Rules)
		if err == nil {
			continue
		}
		errs[f.FieldName(field.Name)] = message(field, err, t)
	}
	return errs
}

func message(field Field, err error, t i18n.Func) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		tag := verrs[0].Tag()
		if key, ok := field.Messages[tag]; ok {
			return t(key)
		}
		if key, ok := field.Messages["*"]; ok {
			return t(key)
		}
		return verrs[0].Error()
	}
	return err.Error()
}

// View returns the state of every field in declaration order.
func (f *Form) View() []FieldView {
	views := make([]FieldView, 0, len(f.fields))
	for _, field := range f.fields {
		name := f.FieldName(field.Name)
		views = append(views, FieldView{
			Name:    name,
			ID:      name,
			Value:   f.values[field.Name],
			Display: f.Display(field.Name),
			Control: field.Control,
		})
	}
	return views
}
