package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursepath/core"
)

func TestNewCourse_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	valid := NewCourse{
		Title:       "Go",
		Description: "Learn Go",
		Thumbnail:   "https://placehold.co/600x400",
		Instructor:  "Rob",
		Duration:    "4 weeks",
		Modules:     []Module{{ID: "m1", Title: "Intro", Content: "Hello"}},
	}

	tests := []struct {
		name       string
		mutate     func(nc *NewCourse)
		wantFields map[string]string
	}{
		{name: "valid", mutate: func(*NewCourse) {}},
		{name: "no modules", mutate: func(nc *NewCourse) { nc.Modules = nil }},
		{
			name:   "blank title",
			mutate: func(nc *NewCourse) { nc.Title = "   " },
			wantFields: map[string]string{
				"title": "title is required",
			},
		},
		{
			name: "missing fields",
			mutate: func(nc *NewCourse) {
				nc.Instructor = ""
				nc.Duration = ""
			},
			wantFields: map[string]string{
				"instructor": "instructor is required",
				"duration":   "duration is required",
			},
		},
		{
			name:   "invalid module",
			mutate: func(nc *NewCourse) { nc.Modules = append(nc.Modules, Module{ID: "m2"}) },
			wantFields: map[string]string{
				"modules[1].title":   "title is required",
				"modules[1].content": "content is required",
			},
		},
		{
			name: "duplicate module ids",
			mutate: func(nc *NewCourse) {
				nc.Modules = append(nc.Modules, Module{ID: "m1", Title: "Again", Content: "Again"})
			},
			wantFields: map[string]string{
				"modules": uniqueModulesText,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc := valid
			nc.Modules = append([]Module(nil), valid.Modules...)
			tt.mutate(&nc)

			err := nc.Validate(validate, translator)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantFields, vErr.FieldMap())
		})
	}
}

func TestUpdateCourse_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	uc := UpdateCourse{Title: "Go", Description: "d", Thumbnail: "t", Instructor: "i", Duration: "1 week"}
	err := uc.Validate(validate, translator)

	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, map[string]string{"id": "id is required"}, vErr.FieldMap())
}
