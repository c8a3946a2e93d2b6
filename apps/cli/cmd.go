package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/trezcool/coursepath/core/course"
	"github.com/trezcool/coursepath/services/auth"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	data     *course.Facade
	issuer   *auth.Issuer
	out      io.Writer
	readFile func(name string) ([]byte, error) // mockable
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  probe [-retry]                                      - show (or re-detect) the data mode")
	fmt.Fprintln(cli.out, "  courses                                             - list the catalog")
	fmt.Fprintln(cli.out, "  course -id ID                                       - show a course")
	fmt.Fprintln(cli.out, "  create -file DRAFT.yaml                             - create a course")
	fmt.Fprintln(cli.out, "  update -file COURSE.yaml                            - update a course")
	fmt.Fprintln(cli.out, "  delete -id ID                                       - delete a course")
	fmt.Fprintln(cli.out, "  enroll -course ID -student ID                       - enroll a student")
	fmt.Fprintln(cli.out, "  progress -course ID -student ID -module ID [-undo]  - mark a module as completed")
	fmt.Fprintln(cli.out, "  enrollment -course ID -student ID                   - show an enrollment")
	fmt.Fprintln(cli.out, "  enrollments -student ID                             - list the enrollments of a student")
	fmt.Fprintln(cli.out, "  enrolled -student ID                                - list the courses of a student")
	fmt.Fprintln(cli.out, "  students -course ID                                 - list the students of a course")
	fmt.Fprintln(cli.out, "  token -student ID [-admin]                          - mint a gateway token")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	probeCmd := cli.newFlagSet("probe")
	probeRetry := probeCmd.Bool("retry", false, "Probe the gateway again.")

	coursesCmd := cli.newFlagSet("courses")

	courseCmd := cli.newFlagSet("course")
	courseID := courseCmd.String("id", "", "The course ID.")

	createCmd := cli.newFlagSet("create")
	createFile := createCmd.String("file", "", "YAML file holding the course draft.")

	updateCmd := cli.newFlagSet("update")
	updateFile := updateCmd.String("file", "", "YAML file holding the updated course.")

	deleteCmd := cli.newFlagSet("delete")
	deleteID := deleteCmd.String("id", "", "The course ID.")

	enrollCmd := cli.newFlagSet("enroll")
	enrollCourse := enrollCmd.String("course", "", "The course ID.")
	enrollStudent := enrollCmd.String("student", "", "The student ID.")

	progressCmd := cli.newFlagSet("progress")
	progressCourse := progressCmd.String("course", "", "The course ID.")
	progressStudent := progressCmd.String("student", "", "The student ID.")
	progressModule := progressCmd.String("module", "", "The module ID.")
	progressUndo := progressCmd.Bool("undo", false, "Mark the module as not completed.")

	enrollmentCmd := cli.newFlagSet("enrollment")
	enrollmentCourse := enrollmentCmd.String("course", "", "The course ID.")
	enrollmentStudent := enrollmentCmd.String("student", "", "The student ID.")

	enrollmentsCmd := cli.newFlagSet("enrollments")
	enrollmentsStudent := enrollmentsCmd.String("student", "", "The student ID.")

	enrolledCmd := cli.newFlagSet("enrolled")
	enrolledStudent := enrolledCmd.String("student", "", "The student ID.")

	studentsCmd := cli.newFlagSet("students")
	studentsCourse := studentsCmd.String("course", "", "The course ID.")

	tokenCmd := cli.newFlagSet("token")
	tokenStudent := tokenCmd.String("student", "", "The student ID (empty for an admin token).")
	tokenAdmin := tokenCmd.Bool("admin", false, "Grant the admin role.")

	// parse parses the sub-command flags and checks that every required flag is set.
	parse := func(fs *flag.FlagSet, required ...*string) error {
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		for _, val := range required {
			if *val == "" {
				fs.Usage()
				return errHelp
			}
		}
		return nil
	}

	switch args[1] {
	case "probe":
		if err := parse(probeCmd); err != nil {
			return err
		}
		return cli.probe(ctx, *probeRetry)
	case "courses":
		if err := parse(coursesCmd); err != nil {
			return err
		}
		return cli.listCourses(ctx)
	case "course":
		if err := parse(courseCmd, courseID); err != nil {
			return err
		}
		return cli.getCourse(ctx, *courseID)
	case "create":
		if err := parse(createCmd, createFile); err != nil {
			return err
		}
		return cli.createCourse(ctx, *createFile)
	case "update":
		if err := parse(updateCmd, updateFile); err != nil {
			return err
		}
		return cli.updateCourse(ctx, *updateFile)
	case "delete":
		if err := parse(deleteCmd, deleteID); err != nil {
			return err
		}
		return cli.deleteCourse(ctx, *deleteID)
	case "enroll":
		if err := parse(enrollCmd, enrollCourse, enrollStudent); err != nil {
			return err
		}
		return cli.enroll(ctx, *enrollCourse, *enrollStudent)
	case "progress":
		if err := parse(progressCmd, progressCourse, progressStudent, progressModule); err != nil {
			return err
		}
		return cli.updateProgress(ctx, *progressCourse, *progressStudent, *progressModule, !*progressUndo)
	case "enrollment":
		if err := parse(enrollmentCmd, enrollmentCourse, enrollmentStudent); err != nil {
			return err
		}
		return cli.getEnrollment(ctx, *enrollmentCourse, *enrollmentStudent)
	case "enrollments":
		if err := parse(enrollmentsCmd, enrollmentsStudent); err != nil {
			return err
		}
		return cli.listEnrollments(ctx, *enrollmentsStudent)
	case "enrolled":
		if err := parse(enrolledCmd, enrolledStudent); err != nil {
			return err
		}
		return cli.listEnrolledCourses(ctx, *enrolledStudent)
	case "students":
		if err := parse(studentsCmd, studentsCourse); err != nil {
			return err
		}
		return cli.listStudents(ctx, *studentsCourse)
	case "token":
		if err := parse(tokenCmd); err != nil {
			return err
		}
		return cli.token(*tokenStudent, *tokenAdmin)
	default:
		cli.printUsage()
		return errHelp
	}
}

// print writes v as YAML.
func (cli *commandLine) print(v interface{}) error {
	enc := yaml.NewEncoder(cli.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
