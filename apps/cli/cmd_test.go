package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursepath/core"
	"github.com/trezcool/coursepath/core/course"
	"github.com/trezcool/coursepath/testutil"
)

var files = map[string]string{
	"draft.yaml": `
title: Go Basics
description: Learn Go
thumbnail: https://placehold.co/600x400
instructor: Gopher
duration: 2 weeks
modules:
  - title: Intro
    content: Hello, Go
`,
	"invalid.yaml": `
title: "  "
description: Learn Go
thumbnail: https://placehold.co/600x400
instructor: Gopher
duration: 2 weeks
`,
	"update.yaml": `
id: "2"
title: Advanced JavaScript, 2nd edition
description: Deep dive into JS
thumbnail: https://placehold.co/600x400
instructor: John Smith
duration: 6 weeks
modules:
  - id: "2-1"
    title: Closures
    content: Understanding closures
`,
	"broken.yaml": "title: [",
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &commandLine{
		data: course.NewFacade(course.FacadeDeps{
			Demo:   testutil.NewDemoBackend(),
			Logger: new(testutil.Logger),
		}),
		issuer: testutil.NewIssuer(),
		out:    &out,
		readFile: func(name string) ([]byte, error) {
			if data, ok := files[name]; ok {
				return []byte(data), nil
			}
			return nil, os.ErrNotExist
		},
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantKind   core.Kind
	wantErrStr string
	wantOut    []string
}

func runCLITests(t *testing.T, tests []cliTest) {
	t.Helper()
	cli, out := setup(t)
	for _, tt := range tests {
		args := append([]string{"coursepath"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(context.Background(), args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantKind != "":
				assert.Equal(t, tt.wantKind, core.KindOf(err), "err = %v", err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"courses", "-lol"}, wantErr: errHelp},
		{name: "course: no id", args: []string{"course"}, wantErr: errHelp},
		{name: "create: no file", args: []string{"create"}, wantErr: errHelp},
		{name: "enroll: no student", args: []string{"enroll", "-course", "1"}, wantErr: errHelp},
		{name: "progress: no module", args: []string{"progress", "-course", "1", "-student", "101"}, wantErr: errHelp},
		{name: "students: no course", args: []string{"students"}, wantErr: errHelp},
	})
}

func Test_commandLine_courses(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "probe", args: []string{"probe"}, wantOut: []string{"mode: demo"}},
		{name: "probe again", args: []string{"probe", "-retry"}, wantOut: []string{"mode: demo"}},
		{name: "list", args: []string{"courses"}, wantOut: []string{"1\tIntroduction to React", "2 module(s)"}},
		{name: "show", args: []string{"course", "-id", "1"}, wantOut: []string{"title: Introduction to React", "title: Getting Started"}},
		{name: "show unknown", args: []string{"course", "-id", "404"}, wantKind: core.KindNotFound},
		{name: "create", args: []string{"create", "-file", "draft.yaml"}, wantOut: []string{"id: mock-", "title: Go Basics", "enrolledStudents: []"}},
		{name: "create invalid", args: []string{"create", "-file", "invalid.yaml"}, wantKind: core.KindValidation},
		{name: "create undecodable", args: []string{"create", "-file", "broken.yaml"}, wantErrStr: "decoding broken.yaml"},
		{name: "create missing file", args: []string{"create", "-file", "nope.yaml"}, wantErrStr: "reading nope.yaml"},
		{name: "update", args: []string{"update", "-file", "update.yaml"}, wantOut: []string{"title: Advanced JavaScript, 2nd edition", "- \"101\""}},
		{name: "delete", args: []string{"delete", "-id", "3"}, wantOut: []string{"course 3 deleted"}},
		{name: "deleted", args: []string{"course", "-id", "3"}, wantKind: core.KindNotFound},
	})
}

func Test_commandLine_enrollments(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "enroll", args: []string{"enroll", "-course", "3", "-student", "s1"}, wantOut: []string{"studentId: s1", "progress: 0"}},
		{name: "enroll unknown course", args: []string{"enroll", "-course", "404", "-student", "s1"}, wantKind: core.KindEnrollment},
		{
			name:    "complete a module",
			args:    []string{"progress", "-course", "3", "-student", "s1", "-module", "3-1"},
			wantOut: []string{"progress: 50", "- 3-1"},
		},
		{
			name:    "undo",
			args:    []string{"progress", "-course", "3", "-student", "s1", "-module", "3-1", "-undo"},
			wantOut: []string{"progress: 0", "completedModules: []"},
		},
		{
			name:     "module of another course",
			args:     []string{"progress", "-course", "3", "-student", "s1", "-module", "1-1"},
			wantKind: core.KindValidation,
		},
		{name: "show", args: []string{"enrollment", "-course", "3", "-student", "s1"}, wantOut: []string{"courseId: \"3\""}},
		{name: "show missing", args: []string{"enrollment", "-course", "2", "-student", "s1"}, wantKind: core.KindNotFound},
		{name: "list", args: []string{"enrollments", "-student", "s1"}, wantOut: []string{"3\t2024-03-01\t0%"}},
		{name: "enrolled", args: []string{"enrolled", "-student", "101"}, wantOut: []string{"1\tIntroduction to React", "2\t"}},
		{name: "students", args: []string{"students", "-course", "1"}, wantOut: []string{"101\n102\n"}},
	})
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run(context.Background(), []string{"coursepath", "token", "-student", "101"}))
	claims, err := cli.issuer.ParseToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "101", claims.Subject)
	assert.True(t, claims.IsStudent)
	assert.False(t, claims.IsAdmin)

	out.Reset()
	require.NoError(t, cli.run(context.Background(), []string{"coursepath", "token"}))
	claims, err = cli.issuer.ParseToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)

	cli.issuer = nil
	assert.Error(t, cli.run(context.Background(), []string{"coursepath", "token"}))
}
