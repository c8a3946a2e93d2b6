package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (cli *commandLine) enroll(ctx context.Context, courseID, studentID string) error {
	e, err := cli.data.Enroll(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	return cli.print(e)
}

func (cli *commandLine) updateProgress(ctx context.Context, courseID, studentID, moduleID string, completed bool) error {
	e, err := cli.data.UpdateProgress(ctx, courseID, studentID, moduleID, completed)
	if err != nil {
		return err
	}
	return cli.print(e)
}

func (cli *commandLine) getEnrollment(ctx context.Context, courseID, studentID string) error {
	e, err := cli.data.GetEnrollment(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	return cli.print(e)
}

func (cli *commandLine) listEnrollments(ctx context.Context, studentID string) error {
	enrollments, err := cli.data.ListEnrollments(ctx, studentID)
	if err != nil {
		return err
	}
	for _, e := range enrollments {
		fmt.Fprintf(cli.out, "%s\t%s\t%.0f%%\n", e.CourseID, e.EnrolledDate.Format("2006-01-02"), e.Progress)
	}
	return nil
}

func (cli *commandLine) listEnrolledCourses(ctx context.Context, studentID string) error {
	courses, err := cli.data.ListEnrolledCourses(ctx, studentID)
	if err != nil {
		return err
	}
	for _, crs := range courses {
		fmt.Fprintf(cli.out, "%s\t%s\n", crs.ID, crs.Title)
	}
	return nil
}

// listStudents refreshes the catalog and prints the students known to follow courseID.
func (cli *commandLine) listStudents(ctx context.Context, courseID string) error {
	if _, err := cli.data.ListCourses(ctx); err != nil {
		return err
	}
	for _, s := range cli.data.StudentsByCourse(courseID) {
		fmt.Fprintln(cli.out, s)
	}
	return nil
}

func (cli *commandLine) token(studentID string, admin bool) error {
	if cli.issuer == nil {
		return errors.New("no token issuer configured")
	}
	token, err := cli.issuer.GenerateToken(cli.issuer.NewClaims(studentID, admin))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
