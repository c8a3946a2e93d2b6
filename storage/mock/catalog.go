package mock

import "github.com/trezcool/coursepath/core/course"

// Catalog returns a fresh copy of the courses the demo dataset starts with.
func Catalog() []course.Course {
	return []course.Course{
		{
			ID:          "1",
			Title:       "Introduction to React",
			Description: "Learn the basics of React, hooks, state management and more.",
			Thumbnail:   "https://placehold.co/600x400?text=React+Course",
			Instructor:  "John Doe",
			Duration:    "8 weeks",
			Modules: []course.Module{
				{ID: "1-1", Title: "Getting Started", Content: "React basics", VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
				{ID: "1-2", Title: "Components", Content: "Creating components"},
			},
			EnrolledStudents: []string{"101", "102"},
		},
		{
			ID:          "2",
			Title:       "Advanced JavaScript",
			Description: "Deep dive into JavaScript advanced concepts and patterns.",
			Thumbnail:   "https://placehold.co/600x400?text=JavaScript+Course",
			Instructor:  "Jane Smith",
			Duration:    "6 weeks",
			Modules: []course.Module{
				{ID: "2-1", Title: "Closures", Content: "Understanding closures"},
				{ID: "2-2", Title: "Promises", Content: "Async programming"},
			},
			EnrolledStudents: []string{"101"},
		},
		{
			ID:          "3",
			Title:       "Full Stack Development",
			Description: "Build complete web applications with modern technologies.",
			Thumbnail:   "https://placehold.co/600x400?text=Full+Stack+Course",
			Instructor:  "Mike Johnson",
			Duration:    "12 weeks",
			Modules: []course.Module{
				{ID: "3-1", Title: "Frontend Basics", Content: "HTML, CSS, JS"},
				{ID: "3-2", Title: "Backend Development", Content: "Node.js, Express"},
			},
			EnrolledStudents: []string{},
		},
	}
}
