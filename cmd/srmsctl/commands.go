package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/stemsi/srms/internal/client"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/table"
)

// ─── View flags ─────────────────────────────────────────────────────────────

// viewFlags are shared by every listing command. Search, sort and paging run
// over the fetched rows.
type viewFlags struct {
	search string
	sort   string
	page   int
	size   int
}

func (v *viewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&v.search, "search", "", "only show rows containing this text")
	fs.StringVar(&v.sort, "sort", "", "sort by column key, prefix with - for descending")
	fs.IntVar(&v.page, "page", 1, "page to show")
	fs.IntVar(&v.size, "size", table.DefaultPageSize, "rows per page")
}

func show[T table.Record](w io.Writer, columns []table.Column[T], rows []T, v viewFlags, actions table.Actions[T]) error {
	opts := table.DefaultOptions()
	opts.PageSize = v.size
	t := table.New(columns, rows, opts, actions)
	t.SetSearch(v.search)
	if key := strings.TrimPrefix(v.sort, "-"); key != "" {
		t.ToggleSort(key)
		if strings.HasPrefix(v.sort, "-") {
			t.ToggleSort(key)
		}
	}
	t.SetPage(v.page)
	return t.Render(w)
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet("srmsctl "+name, flag.ContinueOnError)
}

// ─── Session ────────────────────────────────────────────────────────────────

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	if *email == "" {
		fmt.Fprint(os.Stderr, "Email: ")
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		*email = strings.TrimSpace(line)
	}
	password, err := readPassword(in)
	if err != nil {
		return err
	}

	if !a.session.Login(ctx, *email, password) {
		return errors.New("login failed: check your email and password")
	}
	user := a.session.User()
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func readPassword(in *bufio.Reader) (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(raw), err
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if a.session.IsAuthenticated() {
		if err := a.api.Auth().Logout(ctx); err != nil {
			a.log.Warn().Err(err).Msg("Server logout failed; clearing local session anyway")
		}
	}
	a.session.Logout()
	fmt.Println("Logged out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.api.Auth().Verify(ctx)
	if err != nil {
		return err
	}
	a.session.SetUser(user)
	fmt.Printf("%s <%s>\nrole: %s\nid:   %s\n", user.Name, user.Email, user.Role, user.ID)
	return nil
}

// ─── Students ───────────────────────────────────────────────────────────────

var studentColumns = []table.Column[model.Student]{
	{Key: "roll_number", Label: "Roll No", Sortable: true},
	{Key: "name", Label: "Name", Sortable: true},
	{Key: "email", Label: "Email", Sortable: true},
	{Key: "class", Label: "Class", Sortable: true},
	{Key: "is_active", Label: "Status", Render: func(v any, _ model.Student) string {
		if v == true {
			return "active"
		}
		return "pending"
	}},
	{Key: "id", Label: "ID"},
}

func runStudents(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("students")
	var view viewFlags
	view.register(fs)
	class := fs.String("class", "", "only students of this class")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := a.api.Students().List(ctx, client.StudentQuery{
		PageQuery: client.PageQuery{Page: 1, Limit: model.MaxPageLimit},
		Class:     *class,
	})
	if err != nil {
		return err
	}
	return show(os.Stdout, studentColumns, list.Items, view, table.Actions[model.Student]{})
}

func runStudent(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: srmsctl student <id>")
	}
	id := args[0]

	var (
		student *model.Student
		results []model.Result
		stats   *model.StudentStatistics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { student, err = a.api.Students().Get(gctx, id); return })
	g.Go(func() (err error) { results, err = a.api.Students().Results(gctx, id); return })
	g.Go(func() (err error) { stats, err = a.api.Students().Statistics(gctx, id); return })
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("%s  %s  (%s)\n%s\n\n", student.RollNumber, student.Name, student.Class, student.Email)
	printStudentStats(stats)
	fmt.Println()
	return show(os.Stdout, resultColumns(false), results, viewFlags{page: 1}, table.Actions[model.Result]{})
}

func runApprove(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: srmsctl approve <id>")
	}
	student, err := a.api.Students().Approve(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Approved %s (%s)\n", student.Name, student.RollNumber)
	return nil
}

func printStudentStats(st *model.StudentStatistics) {
	fmt.Printf("Subjects: %d  Average: %.2f  Grade: %s  GPA: %.2f\n",
		st.TotalSubjects, st.AverageMarks, st.OverallGrade, st.GPA)
}

// ─── Courses ────────────────────────────────────────────────────────────────

var courseColumns = []table.Column[model.Course]{
	{Key: "course_code", Label: "Code", Sortable: true},
	{Key: "course_name", Label: "Course", Sortable: true},
	{Key: "credits", Label: "Credits", Sortable: true},
	{Key: "semester", Label: "Semester", Sortable: true},
	{Key: "id", Label: "ID"},
}

func runCourses(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("courses")
	var view viewFlags
	view.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := a.api.Courses().List(ctx, client.CourseQuery{
		PageQuery: client.PageQuery{Page: 1, Limit: model.MaxPageLimit},
	})
	if err != nil {
		return err
	}
	return show(os.Stdout, courseColumns, list.Items, view, table.Actions[model.Course]{})
}

// ─── Results ────────────────────────────────────────────────────────────────

func resultColumns(withStudent bool) []table.Column[model.Result] {
	cols := []table.Column[model.Result]{}
	if withStudent {
		cols = append(cols,
			table.Column[model.Result]{Key: "roll_number", Label: "Roll No", Sortable: true},
			table.Column[model.Result]{Key: "student_name", Label: "Student", Sortable: true},
		)
	}
	return append(cols,
		table.Column[model.Result]{Key: "course_code", Label: "Code", Sortable: true},
		table.Column[model.Result]{Key: "course_name", Label: "Course", Sortable: true},
		table.Column[model.Result]{Key: "marks", Label: "Marks", Sortable: true, Render: func(v any, _ model.Result) string {
			return fmt.Sprintf("%.2f", v)
		}},
		table.Column[model.Result]{Key: "grade", Label: "Grade", Sortable: true},
		table.Column[model.Result]{Key: "exam_type", Label: "Exam", Sortable: true},
		table.Column[model.Result]{Key: "exam_date", Label: "Date", Sortable: true},
	)
}

func runResults(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("results")
	var view viewFlags
	view.register(fs)
	student := fs.String("student", "", "student ID or roll number")
	course := fs.String("course", "", "course ID or code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The dropdowns resolve roll numbers and course codes to IDs.
	var (
		students []model.StudentOption
		courses  []model.CourseOption
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { students, err = a.api.Students().Dropdown(gctx); return })
	g.Go(func() (err error) { courses, err = a.api.Courses().Dropdown(gctx); return })
	if err := g.Wait(); err != nil {
		return err
	}

	q := client.ResultQuery{PageQuery: client.PageQuery{Page: 1, Limit: model.MaxPageLimit}}
	if *student != "" {
		id, ok := resolveStudent(students, *student)
		if !ok {
			return fmt.Errorf("no student matches %q", *student)
		}
		q.StudentID = id
	}
	if *course != "" {
		id, ok := resolveCourse(courses, *course)
		if !ok {
			return fmt.Errorf("no course matches %q", *course)
		}
		q.CourseID = id
	}

	list, err := a.api.Results().List(ctx, q)
	if err != nil {
		return err
	}
	return show(os.Stdout, resultColumns(true), list.Items, view, table.Actions[model.Result]{})
}

func resolveStudent(opts []model.StudentOption, ref string) (string, bool) {
	for _, o := range opts {
		if o.ID == ref || strings.EqualFold(o.RollNumber, ref) {
			return o.ID, true
		}
	}
	return "", false
}

func resolveCourse(opts []model.CourseOption, ref string) (string, bool) {
	for _, o := range opts {
		if o.ID == ref || strings.EqualFold(o.CourseCode, ref) {
			return o.ID, true
		}
	}
	return "", false
}

// runImport reads either a JSON array of results or {"results": [...]}.
func runImport(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: srmsctl import <file.json>")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	drafts, err := parseDrafts(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	queued, err := a.api.Results().Bulk(ctx, drafts)
	if err != nil {
		return err
	}
	fmt.Printf("Queued %d results for import\n", queued)
	return nil
}

func parseDrafts(raw []byte) ([]model.ResultRequest, error) {
	var drafts []model.ResultRequest
	if err := json.Unmarshal(raw, &drafts); err == nil {
		return drafts, nil
	}
	var wrapped model.BulkResultRequest
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Results, nil
}

func runMyResults(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("my-results")
	var view viewFlags
	view.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		results []model.Result
		stats   *model.StudentStatistics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { results, err = a.api.Results().Mine(gctx); return })
	g.Go(func() (err error) { stats, err = a.api.Dashboard().StudentStats(gctx, a.session.User().ID); return })
	if err := g.Wait(); err != nil {
		return err
	}

	printStudentStats(stats)
	fmt.Println()
	return show(os.Stdout, resultColumns(false), results, view, table.Actions[model.Result]{})
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

func runDashboard(ctx context.Context, a *app, _ []string) error {
	stats, err := a.api.Dashboard().Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Students: %d  Courses: %d  Results: %d\n", stats.TotalStudents, stats.TotalCourses, stats.TotalResults)
	fmt.Printf("Average: %.2f (%s)  Pass rate: %.1f%%\n\n", stats.AverageMarks, stats.AverageGrade, stats.PassRate)

	fmt.Println("Top performers")
	if err := show(os.Stdout, []table.Column[model.TopPerformer]{
		{Key: "roll_number", Label: "Roll No"},
		{Key: "name", Label: "Name"},
		{Key: "average_marks", Label: "Average", Render: func(v any, _ model.TopPerformer) string { return fmt.Sprintf("%.2f", v) }},
		{Key: "grade", Label: "Grade"},
	}, stats.TopPerformers, viewFlags{page: 1}, table.Actions[model.TopPerformer]{}); err != nil {
		return err
	}

	fmt.Println("\nGrade distribution")
	if err := show(os.Stdout, []table.Column[model.GradeBucket]{
		{Key: "grade", Label: "Grade"},
		{Key: "count", Label: "Count"},
		{Key: "percentage", Label: "Share", Render: func(v any, _ model.GradeBucket) string { return fmt.Sprintf("%.1f%%", v) }},
	}, stats.GradeDistribution, viewFlags{page: 1}, table.Actions[model.GradeBucket]{}); err != nil {
		return err
	}

	fmt.Println("\nRecent results")
	return show(os.Stdout, resultColumns(true), stats.RecentResults, viewFlags{page: 1}, table.Actions[model.Result]{})
}
