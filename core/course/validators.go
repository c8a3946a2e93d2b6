package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursepath/core"
)

var (
	uniqueModulesTag  = "uniqmodules"
	uniqueModulesText = "module ids must be unique within a course"
)

// InitValidators registers the course validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(courseStructValidation, NewCourse{}, UpdateCourse{})
	core.RegisterCustomTranslation(validate, translator, uniqueModulesTag, uniqueModulesText)
}

func (nc NewCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	if err := validate.Struct(nc); err != nil {
		return core.NewFieldsValidationError(err, translator)
	}
	return nil
}

func (uc UpdateCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	if err := validate.Struct(uc); err != nil {
		return core.NewFieldsValidationError(err, translator)
	}
	return nil
}

// courseStructValidation does struct level validation on NewCourse and UpdateCourse structs.
func courseStructValidation(sl validator.StructLevel) {
	var modules []Module
	switch c := sl.Current().Interface().(type) {
	case NewCourse:
		modules = c.Modules
	case UpdateCourse:
		modules = c.Modules
	}

	seen := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if m.ID == "" {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			sl.ReportError(modules, "modules", "Modules", uniqueModulesTag, "")
			return
		}
		seen[m.ID] = struct{}{}
	}
}
