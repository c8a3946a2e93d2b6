package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/coursepath/core/course"
)

func (cli *commandLine) probe(ctx context.Context, retry bool) error {
	var mode course.Mode
	if retry {
		mode = cli.data.RetryProbe(ctx)
	} else {
		mode = cli.data.Probe(ctx)
	}
	fmt.Fprintf(cli.out, "mode: %s\n", mode)
	return nil
}

func (cli *commandLine) listCourses(ctx context.Context) error {
	courses, err := cli.data.ListCourses(ctx)
	if err != nil {
		return err
	}
	for _, crs := range courses {
		fmt.Fprintf(cli.out, "%s\t%s\t%s\t%d module(s)\t%d student(s)\n",
			crs.ID, crs.Title, crs.Instructor, len(crs.Modules), len(crs.EnrolledStudents))
	}
	return nil
}

func (cli *commandLine) getCourse(ctx context.Context, id string) error {
	crs, err := cli.data.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	return cli.print(crs)
}

// readYAML decodes the YAML file at path into v.
func (cli *commandLine) readYAML(path string, v interface{}) error {
	data, err := cli.readFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err = yaml.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}

func (cli *commandLine) createCourse(ctx context.Context, path string) error {
	var draft course.NewCourse
	if err := cli.readYAML(path, &draft); err != nil {
		return err
	}
	crs, err := cli.data.CreateCourse(ctx, draft)
	if err != nil {
		return err
	}
	return cli.print(crs)
}

func (cli *commandLine) updateCourse(ctx context.Context, path string) error {
	var crs course.Course
	if err := cli.readYAML(path, &crs); err != nil {
		return err
	}
	updated, err := cli.data.UpdateCourse(ctx, crs)
	if err != nil {
		return err
	}
	return cli.print(updated)
}

func (cli *commandLine) deleteCourse(ctx context.Context, id string) error {
	deleted, err := cli.data.DeleteCourse(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.Errorf("course %q was not deleted", id)
	}
	fmt.Fprintf(cli.out, "course %s deleted\n", id)
	return nil
}
