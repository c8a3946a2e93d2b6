package course

import "sync"

// Cache is the session-lifetime store of courses and enrollments.
// Courses keep the order in which they were first stored. All reads return copies.
//
// Writes are pinned to a Generation taken before the backend call they commit. A Reset
// starts a new generation, and writes pinned to an older one are dropped.
type Cache struct {
	mutex sync.RWMutex
	gen   Generation

	courses     map[string]*Course
	courseOrder []string

	enrollments     map[enrollmentKey]*Enrollment
	enrollmentOrder []enrollmentKey
}

func NewCache() *Cache {
	c := new(Cache)
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.courses = make(map[string]*Course)
	c.courseOrder = nil
	c.enrollments = make(map[enrollmentKey]*Enrollment)
	c.enrollmentOrder = nil
}

// Generation identifies the cache contents between two resets.
type Generation uint64

// Generation returns the current generation; pass it to the writes that commit a backend result.
func (c *Cache) Generation() Generation {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.gen
}

// Reset drops every cached entity and starts a new generation.
func (c *Cache) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.gen++
	c.reset()
}

// Courses

func (c *Cache) Courses() []Course {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	courses := make([]Course, 0, len(c.courseOrder))
	for _, id := range c.courseOrder {
		courses = append(courses, c.courses[id].Clone())
	}
	return courses
}

func (c *Cache) Course(id string) (Course, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if crs, ok := c.courses[id]; ok {
		return crs.Clone(), true
	}
	return Course{}, false
}

// ReplaceCourses swaps the whole course table for courses.
// It reports false, changing nothing, when gen is stale.
func (c *Cache) ReplaceCourses(gen Generation, courses []Course) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if gen != c.gen {
		return false
	}
	c.courses = make(map[string]*Course, len(courses))
	c.courseOrder = make([]string, 0, len(courses))
	for _, crs := range courses {
		c.putCourse(crs)
	}
	return true
}

// PutCourse inserts crs or replaces the cached record with the same id.
func (c *Cache) PutCourse(gen Generation, crs Course) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if gen != c.gen {
		return false
	}
	c.putCourse(crs)
	return true
}

// PutCourseIfAbsent stores crs unless a course with the same id is cached already.
// It returns the cached record and whether crs was stored; a stale gen returns crs unstored.
func (c *Cache) PutCourseIfAbsent(gen Generation, crs Course) (Course, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if gen != c.gen {
		return crs.Clone(), false
	}
	if cached, ok := c.courses[crs.ID]; ok {
		return cached.Clone(), false
	}
	c.putCourse(crs)
	return crs.Clone(), true
}

func (c *Cache) putCourse(crs Course) {
	cp := crs.Clone()
	if _, ok := c.courses[crs.ID]; !ok {
		c.courseOrder = append(c.courseOrder, crs.ID)
	}
	c.courses[crs.ID] = &cp
}

func (c *Cache) RemoveCourse(gen Generation, id string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if gen != c.gen {
		return false
	}
	if _, ok := c.courses[id]; !ok {
		return false
	}
	delete(c.courses, id)
	c.courseOrder, _ = without(c.courseOrder, id)
	return true
}

// AddStudent records studentID as enrolled in the cached course, at most once.
func (c *Cache) AddStudent(gen Generation, courseID, studentID string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if crs, ok := c.courses[courseID]; ok && gen == c.gen {
		return crs.AddStudent(studentID)
	}
	return false
}

func (c *Cache) RemoveStudent(gen Generation, courseID, studentID string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if crs, ok := c.courses[courseID]; ok && gen == c.gen {
		return crs.RemoveStudent(studentID)
	}
	return false
}

// Enrollments

func (c *Cache) Enrollment(courseID, studentID string) (Enrollment, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if e, ok := c.enrollments[keyOf(courseID, studentID)]; ok {
		return e.Clone(), true
	}
	return Enrollment{}, false
}

func (c *Cache) Enrollments() []Enrollment {
	return c.filterEnrollments(func(Enrollment) bool { return true })
}

func (c *Cache) StudentEnrollments(studentID string) []Enrollment {
	return c.filterEnrollments(func(e Enrollment) bool { return e.StudentID == studentID })
}

func (c *Cache) CourseEnrollments(courseID string) []Enrollment {
	return c.filterEnrollments(func(e Enrollment) bool { return e.CourseID == courseID })
}

func (c *Cache) filterEnrollments(keep func(Enrollment) bool) []Enrollment {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	enrollments := make([]Enrollment, 0, len(c.enrollmentOrder))
	for _, k := range c.enrollmentOrder {
		if e := c.enrollments[k]; keep(*e) {
			enrollments = append(enrollments, e.Clone())
		}
	}
	return enrollments
}

// PutEnrollment inserts e or replaces the record for the same (course, student) pair.
func (c *Cache) PutEnrollment(gen Generation, e Enrollment) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if gen != c.gen {
		return false
	}
	c.putEnrollment(e)
	return true
}

// PutEnrollmentIfAbsent stores e unless the (course, student) pair is cached already.
// It returns the cached record and whether e was stored; a stale gen returns e unstored.
func (c *Cache) PutEnrollmentIfAbsent(gen Generation, e Enrollment) (Enrollment, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if gen != c.gen {
		return e.Clone(), false
	}
	if cached, ok := c.enrollments[keyOf(e.CourseID, e.StudentID)]; ok {
		return cached.Clone(), false
	}
	c.putEnrollment(e)
	return e.Clone(), true
}

// ReplaceEnrollments swaps the whole enrollment table for enrollments.
// Later duplicates of a (course, student) pair win. A stale gen changes nothing.
func (c *Cache) ReplaceEnrollments(gen Generation, enrollments []Enrollment) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if gen != c.gen {
		return false
	}
	c.enrollments = make(map[enrollmentKey]*Enrollment, len(enrollments))
	c.enrollmentOrder = make([]enrollmentKey, 0, len(enrollments))
	for _, e := range enrollments {
		c.putEnrollment(e)
	}
	return true
}

func (c *Cache) putEnrollment(e Enrollment) {
	cp := e.Clone()
	k := keyOf(e.CourseID, e.StudentID)
	if _, ok := c.enrollments[k]; !ok {
		c.enrollmentOrder = append(c.enrollmentOrder, k)
	}
	c.enrollments[k] = &cp
}
