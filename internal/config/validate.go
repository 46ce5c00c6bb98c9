package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError is a problem in one config source. Key is the dotted koanf
// key of the offending value, Line is set for syntax errors.
type ValidationError struct {
	Source  string
	Line    int
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
	case e.Key != "":
		return fmt.Sprintf("%s: %s %s", e.Source, e.Key, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
}

// CheckSyntax parses the YAML file without decoding it. A missing or blank
// file passes; the layer is then skipped or contributes nothing.
func CheckSyntax(file string) error {
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &ValidationError{Source: file, Message: err.Error()}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		line, msg := splitYAMLError(err.Error())
		return &ValidationError{Source: file, Line: line, Message: msg}
	}
	return nil
}

// splitYAMLError turns "yaml: line 5: did not find expected key" into
// (5, "did not find expected key").
func splitYAMLError(msg string) (int, string) {
	var line int
	if n, _ := fmt.Sscanf(msg, "yaml: line %d:", &line); n == 1 {
		if _, rest, ok := strings.Cut(strings.TrimPrefix(msg, "yaml: "), ": "); ok {
			return line, rest
		}
	}
	return 0, strings.TrimPrefix(msg, "yaml: ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the merged configuration. Every failing field is reported.
func Validate(cfg *Configuration, source string) error {
	var errs []error

	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(cfg); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			errs = append(errs, &ValidationError{Source: source, Key: configKey(fe), Message: describe(fe)})
		}
	} else if err != nil {
		return &ValidationError{Source: source, Message: err.Error()}
	}

	errs = append(errs, checkSubmodules(cfg.Submodules, source)...)
	return errors.Join(errs...)
}

// checkSubmodules enforces what struct tags cannot: aliases are unique and
// paths stay inside the hub.
func checkSubmodules(subs []SubmoduleConfig, source string) []error {
	var errs []error
	owner := make(map[string]string, len(subs))
	for i, sm := range subs {
		if sm.Path != "" && !insideHub(sm.Path) {
			errs = append(errs, &ValidationError{
				Source:  source,
				Key:     fmt.Sprintf("submodules[%d].path", i),
				Message: fmt.Sprintf("must be a relative path inside the hub, got %q", sm.Path),
			})
		}
		if sm.Alias == "" {
			continue
		}
		if prev, ok := owner[sm.Alias]; ok {
			errs = append(errs, &ValidationError{
				Source:  source,
				Key:     "submodules",
				Message: fmt.Sprintf("alias %q used by both %s and %s", sm.Alias, prev, sm.Name),
			})
			continue
		}
		owner[sm.Alias] = sm.Name
	}
	return errs
}

func insideHub(p string) bool {
	if path.IsAbs(p) {
		return false
	}
	clean := path.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}

// configKey strips the root struct from the validator namespace:
// "Configuration.dev.compose_command" becomes "dev.compose_command".
func configKey(fe validator.FieldError) string {
	_, key, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return key
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "unique":
		return "must not repeat " + strings.ToLower(fe.Param())
	default:
		return "failed validation: " + fe.Tag()
	}
}
