package block

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/pawdiary/pawdiary/internal/domain/template"
)

//go:embed schema.cue
var schemaSource string

var definitions = map[template.BlockType]string{
	template.BlockTitle:       "#Title",
	template.BlockNotes:       "#Notes",
	template.BlockTime:        "#Time",
	template.BlockSubcategory: "#Subcategory",
	template.BlockMeasurement: "#Measurement",
	template.BlockRating:      "#Rating",
	template.BlockPortion:     "#Portion",
	template.BlockTimer:       "#Timer",
	template.BlockLocation:    "#Location",
	template.BlockWeather:     "#Weather",
	template.BlockChecklist:   "#Checklist",
	template.BlockAttachment:  "#Attachment",
	template.BlockCost:        "#Cost",
	template.BlockReminder:    "#Reminder",
	template.BlockPeople:      "#People",
	template.BlockRecurrence:  "#Recurrence",
}

// Validator checks block values against the embedded structural schemas and
// then applies the config-aware rules for each block type.
type Validator struct {
	mu   sync.Mutex
	ctx  *cue.Context
	defs map[template.BlockType]cue.Value
	now  func() time.Time
	loc  *time.Location
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source used for time window checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLocation sets the wall-clock location time values are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// NewValidator compiles the schemas once.
func NewValidator(opts ...Option) (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	v := &Validator{
		ctx:  ctx,
		defs: make(map[template.BlockType]cue.Value, len(definitions)),
		now:  time.Now,
		loc:  time.Local,
	}
	for bt, name := range definitions {
		def := root.LookupPath(cue.ParsePath(name))
		if err := def.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSchema, name, err)
		}
		v.defs[bt] = def
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

var defaultValidator = sync.OnceValue(func() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
})

// Default returns the shared validator using the system clock and local time.
func Default() *Validator {
	return defaultValidator()
}

// SafeParse validates raw against bt's schema with default configuration.
func SafeParse(bt template.BlockType, raw json.RawMessage) Result {
	return Default().SafeParse(bt, raw)
}

// Now returns the validator's current time in its location.
func (v *Validator) Now() time.Time {
	return v.now().In(v.loc)
}

// Location returns the wall-clock location.
func (v *Validator) Location() *time.Location {
	return v.loc
}

// SafeParse validates raw against bt's schema with default configuration.
func (v *Validator) SafeParse(bt template.BlockType, raw json.RawMessage) Result {
	return v.Parse(bt, raw, nil)
}

// ValidateBlock applies the block's required flag and then its type rules using
// the block's own config. An optional block left empty is valid.
func (v *Validator) ValidateBlock(def template.BlockDef, raw json.RawMessage) Result {
	if IsEmpty(raw) {
		if def.Required {
			return failure(fieldErr("", MsgRequired))
		}
		return Result{Success: true}
	}
	return v.Parse(def.Type, raw, def.Config)
}

// Parse validates raw as a value of type bt. cfg is the block's config and may be nil.
func (v *Validator) Parse(bt template.BlockType, raw json.RawMessage, cfg any) Result {
	def, ok := v.defs[bt]
	if !ok {
		return failure(fieldErr("", fmt.Sprintf("%s: %s", ErrUnsupportedType, bt)))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("null")
	}
	if errs := v.checkSchema(def, raw); len(errs) > 0 {
		return failure(errs...)
	}
	return v.refine(bt, raw, cfg)
}

func (v *Validator) checkSchema(def cue.Value, raw json.RawMessage) []FieldError {
	expr, err := cuejson.Extract("value", raw)
	if err != nil {
		return []FieldError{fieldErr("", "Invalid value")}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	val := v.ctx.BuildExpr(expr)
	if err := val.Err(); err != nil {
		return []FieldError{fieldErr("", "Invalid value")}
	}
	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return schemaErrors(err)
	}
	return nil
}

func schemaErrors(err error) []FieldError {
	seen := make(map[string]bool)
	var out []FieldError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		fe := fieldErr(cuePath(e.Path()), fmt.Sprintf(format, args...))
		if seen[fe.String()] {
			continue
		}
		seen[fe.String()] = true
		out = append(out, fe)
	}
	if len(out) == 0 {
		out = append(out, fieldErr("", err.Error()))
	}
	return out
}

// cuePath drops definition selectors so paths are relative to the block value.
func cuePath(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.HasPrefix(p, "#") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

// IsEmpty reports whether a block value counts as unset: absent, null, a blank
// string or an empty object.
func IsEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return false
		}
		return strings.TrimSpace(s) == ""
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return false
		}
		return len(m) == 0
	}
	return false
}
