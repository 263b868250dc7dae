// Package plan reads analysis plans: which dataset to load, which variables
// to describe and test, along which axes, and where to write the result.
package plan

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gounivar/domain/stats"
	"gounivar/internal/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Plan is one analysis request as written in a YAML file
type Plan struct {
	Dataset      Source     `yaml:"dataset"`
	Variables    []Variable `yaml:"variables" validate:"required,min=1,dive"`
	Axes         []string   `yaml:"axes" validate:"dive,required"`
	AssumeNormal bool       `yaml:"assume_normal"`
	Output       Output     `yaml:"output"`
}

// Source is either a file (path, optional sheet) or a SQL query
type Source struct {
	Path   string `yaml:"path" validate:"required_without=Query,excluded_with=Query"`
	Sheet  string `yaml:"sheet"`
	Driver string `yaml:"driver" validate:"required_with=Query"`
	DSN    string `yaml:"dsn" validate:"required_with=Query"`
	Query  string `yaml:"query" validate:"required_without=Path"`
}

// Variable names a column and how to treat it
type Variable struct {
	Name string `yaml:"name" validate:"required"`
	Kind string `yaml:"kind" validate:"required,oneof=qualitative quantitative"`
}

// Output selects the rendering; an empty path means stdout
type Output struct {
	Format    string `yaml:"format" validate:"omitempty,oneof=raw csv tsv xlsx markdown md html json"`
	Path      string `yaml:"path"`
	Precision *int   `yaml:"precision" validate:"omitempty,min=0,max=12"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and validates a plan file. A relative dataset path is resolved
// against the plan's directory.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("plan file %s", path))
		}
		return nil, errors.Wrapf(err, "failed to read plan %s", path)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if p.Dataset.Path != "" && !filepath.IsAbs(p.Dataset.Path) {
		p.Dataset.Path = filepath.Join(filepath.Dir(path), p.Dataset.Path)
	}
	return p, nil
}

// Parse decodes YAML, rejecting unknown keys, and validates the result
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "invalid plan"))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks field constraints and that no variable is listed twice
func (p *Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = describe(fe)
			}
			return errors.ValidationError("invalid plan: " + strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid plan")
	}

	seen := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		if seen[v.Name] {
			return errors.ValidationError(fmt.Sprintf("invalid plan: variable %q listed twice", v.Name))
		}
		seen[v.Name] = true
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Plan.")
	switch fe.Tag() {
	case "required", "required_with", "required_without":
		return field + " is required"
	case "excluded_with":
		return field + " cannot be combined with " + strings.ToLower(fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}

// StatsVariables returns the variables in plan order
func (p *Plan) StatsVariables() []stats.Variable {
	out := make([]stats.Variable, len(p.Variables))
	for i, v := range p.Variables {
		out[i] = stats.Variable{Name: v.Name, Kind: stats.VariableKind(v.Kind)}
	}
	return out
}

// IsSQL reports whether the dataset comes from a query
func (s Source) IsSQL() bool {
	return s.Query != ""
}
