package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/stemsi/srms/internal/model"
)

// DefaultPageLimit is the page size assumed when a query leaves Limit at 0.
const DefaultPageLimit = 50

// PageQuery selects one page of a list endpoint. Page is 1-based.
type PageQuery struct {
	Page  int
	Limit int
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.Limit
	if size <= 0 {
		size = DefaultPageLimit
	}
	v.Set("offset", strconv.Itoa((page-1)*size))
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func withQuery(path string, v url.Values) string {
	for k, vals := range v {
		if len(vals) == 0 || vals[0] == "" {
			delete(v, k)
		}
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// List is one page of records plus the server's pagination metadata.
type List[T any] struct {
	Items      []T
	Pagination *Pagination
}

func decodeList[T any](env *Envelope, err error) (List[T], error) {
	if err != nil {
		return List[T]{}, err
	}
	items, err := Decode[[]T](env)
	if err != nil && !errors.Is(err, ErrNoData) {
		return List[T]{}, err
	}
	return List[T]{Items: items, Pagination: env.Pagination}, nil
}

func decodeOne[T any](env *Envelope, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	v, err := Decode[T](env)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func expectSuccess(env *Envelope, err error) error {
	if err != nil {
		return err
	}
	if !env.Success {
		apiErr := &APIError{Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
		}
		return apiErr
	}
	return nil
}

// ─── Auth ───────────────────────────────────────────────────────────────────

// LoginResult is the login envelope with its data already typed.
type LoginResult struct {
	Success bool
	Message string
	Data    *model.LoginResponse
}

type AuthAPI struct{ c *Client }

func (c *Client) Auth() AuthAPI { return AuthAPI{c} }

// Login exchanges credentials for a token. It does not change the client's
// token; the session store decides what to keep.
func (a AuthAPI) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := a.c.Request(ctx, http.MethodPost, "/auth/login", model.LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	res := &LoginResult{Success: env.Success, Message: env.Message}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		var data model.LoginResponse
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		res.Data = &data
	}
	return res, nil
}

func (a AuthAPI) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	return decodeOne[model.RegisterResponse](a.c.Request(ctx, http.MethodPost, "/auth/register", req, nil))
}

func (a AuthAPI) Verify(ctx context.Context) (*model.User, error) {
	out, err := decodeOne[struct {
		User model.User `json:"user"`
	}](a.c.Request(ctx, http.MethodGet, "/auth/verify", nil, nil))
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (a AuthAPI) Logout(ctx context.Context) error {
	return expectSuccess(a.c.Request(ctx, http.MethodPost, "/auth/logout", nil, nil))
}

// Login makes *Client satisfy session.Authenticator.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return c.Auth().Login(ctx, email, password)
}

// ─── Students ───────────────────────────────────────────────────────────────

type StudentQuery struct {
	PageQuery
	Search string
	Class  string
}

type StudentsAPI struct{ c *Client }

func (c *Client) Students() StudentsAPI { return StudentsAPI{c} }

func (s StudentsAPI) List(ctx context.Context, q StudentQuery) (List[model.Student], error) {
	v := q.values()
	v.Set("search", q.Search)
	v.Set("class", q.Class)
	return decodeList[model.Student](s.c.Request(ctx, http.MethodGet, withQuery("/students", v), nil, nil))
}

func (s StudentsAPI) Get(ctx context.Context, id string) (*model.Student, error) {
	return decodeOne[model.Student](s.c.Request(ctx, http.MethodGet, "/students/"+url.PathEscape(id), nil, nil))
}

func (s StudentsAPI) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	return decodeOne[model.Student](s.c.Request(ctx, http.MethodPost, "/students", req, nil))
}

func (s StudentsAPI) Update(ctx context.Context, id string, req *model.UpdateStudentRequest) (*model.Student, error) {
	return decodeOne[model.Student](s.c.Request(ctx, http.MethodPut, "/students/"+url.PathEscape(id), req, nil))
}

func (s StudentsAPI) Delete(ctx context.Context, id string) error {
	return expectSuccess(s.c.Request(ctx, http.MethodDelete, "/students/"+url.PathEscape(id), nil, nil))
}

func (s StudentsAPI) Approve(ctx context.Context, id string) (*model.Student, error) {
	return decodeOne[model.Student](s.c.Request(ctx, http.MethodPost, "/students/"+url.PathEscape(id)+"/approve", nil, nil))
}

func (s StudentsAPI) Results(ctx context.Context, id string) ([]model.Result, error) {
	l, err := decodeList[model.Result](s.c.Request(ctx, http.MethodGet, "/students/results/"+url.PathEscape(id), nil, nil))
	return l.Items, err
}

func (s StudentsAPI) Statistics(ctx context.Context, id string) (*model.StudentStatistics, error) {
	return decodeOne[model.StudentStatistics](s.c.Request(ctx, http.MethodGet, "/students/statistics/"+url.PathEscape(id), nil, nil))
}

func (s StudentsAPI) Dropdown(ctx context.Context) ([]model.StudentOption, error) {
	l, err := decodeList[model.StudentOption](s.c.Request(ctx, http.MethodGet, "/students/dropdown", nil, nil))
	return l.Items, err
}

// ─── Courses ────────────────────────────────────────────────────────────────

type CourseQuery struct {
	PageQuery
	Search string
}

type CoursesAPI struct{ c *Client }

func (c *Client) Courses() CoursesAPI { return CoursesAPI{c} }

func (s CoursesAPI) List(ctx context.Context, q CourseQuery) (List[model.Course], error) {
	v := q.values()
	v.Set("search", q.Search)
	return decodeList[model.Course](s.c.Request(ctx, http.MethodGet, withQuery("/courses", v), nil, nil))
}

func (s CoursesAPI) Get(ctx context.Context, id string) (*model.Course, error) {
	return decodeOne[model.Course](s.c.Request(ctx, http.MethodGet, "/courses/"+url.PathEscape(id), nil, nil))
}

func (s CoursesAPI) Create(ctx context.Context, req *model.CourseRequest) (*model.Course, error) {
	return decodeOne[model.Course](s.c.Request(ctx, http.MethodPost, "/courses", req, nil))
}

func (s CoursesAPI) Update(ctx context.Context, id string, req *model.CourseRequest) (*model.Course, error) {
	return decodeOne[model.Course](s.c.Request(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), req, nil))
}

func (s CoursesAPI) Delete(ctx context.Context, id string) error {
	return expectSuccess(s.c.Request(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil))
}

func (s CoursesAPI) Statistics(ctx context.Context, id string) (*model.CourseStatistics, error) {
	return decodeOne[model.CourseStatistics](s.c.Request(ctx, http.MethodGet, "/courses/statistics/"+url.PathEscape(id), nil, nil))
}

func (s CoursesAPI) Dropdown(ctx context.Context) ([]model.CourseOption, error) {
	l, err := decodeList[model.CourseOption](s.c.Request(ctx, http.MethodGet, "/courses/dropdown", nil, nil))
	return l.Items, err
}

// ─── Results ────────────────────────────────────────────────────────────────

type ResultQuery struct {
	PageQuery
	StudentID string
	CourseID  string
}

type ResultsAPI struct{ c *Client }

func (c *Client) Results() ResultsAPI { return ResultsAPI{c} }

func (s ResultsAPI) List(ctx context.Context, q ResultQuery) (List[model.Result], error) {
	v := q.values()
	v.Set("student_id", q.StudentID)
	v.Set("course_id", q.CourseID)
	return decodeList[model.Result](s.c.Request(ctx, http.MethodGet, withQuery("/results", v), nil, nil))
}

func (s ResultsAPI) Get(ctx context.Context, id string) (*model.Result, error) {
	return decodeOne[model.Result](s.c.Request(ctx, http.MethodGet, "/results/"+url.PathEscape(id), nil, nil))
}

func (s ResultsAPI) Create(ctx context.Context, req *model.ResultRequest) (*model.Result, error) {
	return decodeOne[model.Result](s.c.Request(ctx, http.MethodPost, "/results", req, nil))
}

func (s ResultsAPI) Update(ctx context.Context, id string, req *model.ResultRequest) (*model.Result, error) {
	return decodeOne[model.Result](s.c.Request(ctx, http.MethodPut, "/results/"+url.PathEscape(id), req, nil))
}

func (s ResultsAPI) Delete(ctx context.Context, id string) error {
	return expectSuccess(s.c.Request(ctx, http.MethodDelete, "/results/"+url.PathEscape(id), nil, nil))
}

// Mine lists the results of the logged-in student.
func (s ResultsAPI) Mine(ctx context.Context) ([]model.Result, error) {
	l, err := decodeList[model.Result](s.c.Request(ctx, http.MethodGet, "/results/student", nil, nil))
	return l.Items, err
}

// Bulk queues drafts for asynchronous import and returns how many were
// accepted.
func (s ResultsAPI) Bulk(ctx context.Context, drafts []model.ResultRequest) (int, error) {
	out, err := decodeOne[model.BulkResultResponse](s.c.Request(ctx, http.MethodPost, "/results/bulk", model.BulkResultRequest{Results: drafts}, nil))
	if err != nil {
		return 0, err
	}
	return out.Queued, nil
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

type DashboardAPI struct{ c *Client }

func (c *Client) Dashboard() DashboardAPI { return DashboardAPI{c} }

func (d DashboardAPI) Stats(ctx context.Context) (*model.DashboardStats, error) {
	return decodeOne[model.DashboardStats](d.c.Request(ctx, http.MethodGet, "/results/dashboard", nil, nil))
}

func (d DashboardAPI) StudentStats(ctx context.Context, studentID string) (*model.StudentStatistics, error) {
	return d.c.Students().Statistics(ctx, studentID)
}
