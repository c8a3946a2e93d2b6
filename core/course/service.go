package course

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/coursepath/core"
)

// Service synchronizes courses between the selected Backend and the Cache.
//
// Every mutation is validated first, then dispatched to the backend, and only committed
// to the cache once the backend has accepted it. Results of a backend call that straddled
// a mode change are returned but not cached.
type Service struct {
	backends   BackendSelector
	cache      *Cache
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger

	lookups     singleflight.Group
	newModuleID func() string
}

func NewService(
	backends BackendSelector,
	cache *Cache,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Service {
	return &Service{
		backends:    backends,
		cache:       cache,
		validate:    validate,
		translator:  translator,
		logger:      logger,
		newModuleID: uuid.NewString,
	}
}

// ListCourses fetches every course and replaces the cached course table with them.
// It never returns a nil slice; on failure the cache is left untouched.
func (svc *Service) ListCourses(ctx context.Context) ([]Course, error) {
	gen := svc.cache.Generation()
	courses, err := svc.backends.Backend(ctx).ListCourses(ctx)
	if err != nil {
		svc.logger.Error("failed to list courses", err)
		return []Course{}, errors.Wrap(err, "listing courses")
	}
	if !svc.cache.ReplaceCourses(gen, courses) {
		svc.logger.Debug("data mode changed while listing courses, result not cached")
		if courses == nil {
			return []Course{}, nil
		}
		return courses, nil
	}
	return svc.cache.Courses(), nil
}

// GetCourse returns the cached course, fetching and caching it on a miss.
// Concurrent misses for the same id share a single fetch, which outlives the cancellation
// of any one caller.
func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	id = core.CleanString(id)
	if id == "" {
		return Course{}, core.NewNotFoundError("course", id)
	}
	if crs, ok := svc.cache.Course(id); ok {
		return crs, nil
	}

	ch := svc.lookups.DoChan(id, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		gen := svc.cache.Generation()
		if crs, ok := svc.cache.Course(id); ok {
			return crs, nil
		}
		crs, err := svc.backends.Backend(ctx).GetCourse(ctx, id)
		if err != nil {
			return nil, err
		}
		crs, _ = svc.cache.PutCourseIfAbsent(gen, crs)
		return crs, nil
	})

	var v interface{}
	var err error
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		return Course{}, errors.Wrap(ctx.Err(), "getting course")
	}
	if err != nil {
		if !core.IsNotFound(err) {
			svc.logger.Error("failed to get course", err, map[string]interface{}{"courseId": id})
		}
		return Course{}, errors.Wrap(err, "getting course")
	}
	return v.(Course).Clone(), nil
}

// CreateCourse validates nc, creates it on the backend and caches the created record.
func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	nc = svc.cleanNewCourse(nc)
	if err := nc.Validate(svc.validate, svc.translator); err != nil {
		return Course{}, err
	}

	gen := svc.cache.Generation()
	crs, err := svc.backends.Backend(ctx).CreateCourse(ctx, nc)
	if err != nil {
		svc.logger.Error("failed to create course", err)
		return Course{}, errors.Wrap(err, "creating course")
	}
	svc.cache.PutCourse(gen, crs)
	return crs.Clone(), nil
}

// UpdateCourse replaces the editable fields of an existing course with those of crs.
// The backend's copy is the one cached and returned. Enrolled students cannot be changed
// through an update.
func (svc *Service) UpdateCourse(ctx context.Context, crs Course) (Course, error) {
	uc := svc.cleanUpdateCourse(crs.AsUpdate())
	if err := uc.Validate(svc.validate, svc.translator); err != nil {
		return Course{}, err
	}

	gen := svc.cache.Generation()
	updated, err := svc.backends.Backend(ctx).UpdateCourse(ctx, uc)
	if err != nil {
		svc.logger.Error("failed to update course", err, map[string]interface{}{"courseId": uc.ID})
		return Course{}, errors.Wrap(err, "updating course")
	}
	svc.cache.PutCourse(gen, updated)
	return updated.Clone(), nil
}

// DeleteCourse deletes the course on the backend, then drops it from the cache.
// Enrollments in the course are kept.
func (svc *Service) DeleteCourse(ctx context.Context, id string) (bool, error) {
	id = core.CleanString(id)
	if id == "" {
		return false, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "id is required"})
	}

	gen := svc.cache.Generation()
	if err := svc.backends.Backend(ctx).DeleteCourse(ctx, id); err != nil {
		svc.logger.Error("failed to delete course", err, map[string]interface{}{"courseId": id})
		return false, errors.Wrap(err, "deleting course")
	}
	svc.cache.RemoveCourse(gen, id)
	return true, nil
}

func (svc *Service) cleanNewCourse(nc NewCourse) NewCourse {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Thumbnail = core.CleanString(nc.Thumbnail)
	nc.Instructor = core.CleanString(nc.Instructor)
	nc.Duration = core.CleanString(nc.Duration)
	nc.Modules = svc.cleanModules(nc.Modules)
	return nc
}

func (svc *Service) cleanUpdateCourse(uc UpdateCourse) UpdateCourse {
	uc.ID = core.CleanString(uc.ID)
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Thumbnail = core.CleanString(uc.Thumbnail)
	uc.Instructor = core.CleanString(uc.Instructor)
	uc.Duration = core.CleanString(uc.Duration)
	uc.Modules = svc.cleanModules(uc.Modules)
	return uc
}

// cleanModules trims module fields and assigns ids to new modules.
func (svc *Service) cleanModules(modules []Module) []Module {
	cleaned := make([]Module, 0, len(modules))
	for _, m := range modules {
		m.ID = core.CleanString(m.ID)
		if m.ID == "" {
			m.ID = svc.newModuleID()
		}
		m.Title = core.CleanString(m.Title)
		m.Content = core.CleanString(m.Content)
		m.VideoURL = core.CleanString(m.VideoURL)
		cleaned = append(cleaned, m)
	}
	return cleaned
}
