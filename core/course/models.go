package course

import (
	"time"
)

type Mode string

const (
	ModeUnprobed Mode = ""
	ModeLive     Mode = "live" // backed by the remote gateway
	ModeDemo     Mode = "demo" // backed by the mock catalog
)

func (m Mode) String() string {
	if m == ModeUnprobed {
		return "unprobed"
	}
	return string(m)
}

type Module struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title" validate:"notblank"`
	Content  string `json:"content" yaml:"content" validate:"notblank"`
	VideoURL string `json:"videoUrl,omitempty" yaml:"videoUrl,omitempty"`
}

type Course struct {
	ID               string   `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description"`
	Thumbnail        string   `json:"thumbnail" yaml:"thumbnail"`
	Instructor       string   `json:"instructor" yaml:"instructor"`
	Duration         string   `json:"duration" yaml:"duration"` // free text, e.g. "8 weeks"
	Modules          []Module `json:"modules" yaml:"modules"`
	EnrolledStudents []string `json:"enrolledStudents" yaml:"enrolledStudents"`
}

// Clone returns a deep copy of the Course; nil slices become empty ones.
func (c Course) Clone() Course {
	cp := c
	cp.Modules = append(make([]Module, 0, len(c.Modules)), c.Modules...)
	cp.EnrolledStudents = append(make([]string, 0, len(c.EnrolledStudents)), c.EnrolledStudents...)
	return cp
}

func (c Course) HasModule(moduleID string) bool {
	for _, m := range c.Modules {
		if m.ID == moduleID {
			return true
		}
	}
	return false
}

func (c Course) HasStudent(studentID string) bool {
	return contains(c.EnrolledStudents, studentID)
}

// AddStudent adds studentID to the enrolled students unless already present.
// It reports whether the set changed.
func (c *Course) AddStudent(studentID string) bool {
	if c.HasStudent(studentID) {
		return false
	}
	c.EnrolledStudents = append(c.EnrolledStudents, studentID)
	return true
}

func (c *Course) RemoveStudent(studentID string) bool {
	var removed bool
	c.EnrolledStudents, removed = without(c.EnrolledStudents, studentID)
	return removed
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string   `json:"title" yaml:"title" validate:"notblank"`
	Description string   `json:"description" yaml:"description" validate:"notblank"`
	Thumbnail   string   `json:"thumbnail" yaml:"thumbnail" validate:"notblank"`
	Instructor  string   `json:"instructor" yaml:"instructor" validate:"notblank"`
	Duration    string   `json:"duration" yaml:"duration" validate:"notblank"`
	Modules     []Module `json:"modules" yaml:"modules" validate:"dive"`
}

// UpdateCourse is a whole-record replacement of an existing Course.
type UpdateCourse struct {
	ID          string   `json:"id" yaml:"id" validate:"notblank"`
	Title       string   `json:"title" yaml:"title" validate:"notblank"`
	Description string   `json:"description" yaml:"description" validate:"notblank"`
	Thumbnail   string   `json:"thumbnail" yaml:"thumbnail" validate:"notblank"`
	Instructor  string   `json:"instructor" yaml:"instructor" validate:"notblank"`
	Duration    string   `json:"duration" yaml:"duration" validate:"notblank"`
	Modules     []Module `json:"modules" yaml:"modules" validate:"dive"`
}

// AsUpdate returns the editable part of the Course.
func (c Course) AsUpdate() UpdateCourse {
	return UpdateCourse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Instructor:  c.Instructor,
		Duration:    c.Duration,
		Modules:     append([]Module(nil), c.Modules...),
	}
}

// Apply replaces the editable fields of c. Enrolled students are kept.
func (uc UpdateCourse) Apply(c Course) Course {
	cp := c.Clone()
	cp.Title = uc.Title
	cp.Description = uc.Description
	cp.Thumbnail = uc.Thumbnail
	cp.Instructor = uc.Instructor
	cp.Duration = uc.Duration
	cp.Modules = append(make([]Module, 0, len(uc.Modules)), uc.Modules...)
	return cp
}

type Enrollment struct {
	ID               string    `json:"id" yaml:"id"`
	CourseID         string    `json:"courseId" yaml:"courseId"`
	StudentID        string    `json:"studentId" yaml:"studentId"`
	EnrolledDate     time.Time `json:"enrolledDate" yaml:"enrolledDate"` // UTC
	Progress         float64   `json:"progress" yaml:"progress"`         // 0 - 100
	CompletedModules []string  `json:"completedModules" yaml:"completedModules"`
}

func (e Enrollment) Clone() Enrollment {
	cp := e
	cp.CompletedModules = append(make([]string, 0, len(e.CompletedModules)), e.CompletedModules...)
	return cp
}

func (e Enrollment) HasCompleted(moduleID string) bool {
	return contains(e.CompletedModules, moduleID)
}

// ToggleModule sets the completion state of moduleID and reports whether anything changed.
func (e *Enrollment) ToggleModule(moduleID string, completed bool) bool {
	if completed {
		if e.HasCompleted(moduleID) {
			return false
		}
		e.CompletedModules = append(e.CompletedModules, moduleID)
		return true
	}
	var removed bool
	e.CompletedModules, removed = without(e.CompletedModules, moduleID)
	return removed
}

// Recompute sets Progress from the completed modules that belong to c.
func (e *Enrollment) Recompute(c Course) {
	var done int
	for _, id := range e.CompletedModules {
		if c.HasModule(id) {
			done++
		}
	}
	e.Progress = Progress(done, len(c.Modules))
}

// Progress returns the completion percentage; a course without modules is 0% complete.
func Progress(completed, total int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return 100 * float64(completed) / float64(total)
}

type enrollmentKey struct {
	courseID  string
	studentID string
}

func keyOf(courseID, studentID string) enrollmentKey {
	return enrollmentKey{courseID: courseID, studentID: studentID}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func without(ss []string, s string) ([]string, bool) {
	out := ss[:0:0]
	var removed bool
	for _, v := range ss {
		if v == s {
			removed = true
			continue
		}
		out = append(out, v)
	}
	if !removed {
		return ss, false
	}
	return out, true
}
