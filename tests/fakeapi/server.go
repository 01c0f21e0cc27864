// Package fakeapi is an in-memory MathBombs server used by the tests.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/models"
)

const contextTeacherKey = "teacherID"

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	errForbidden    = echo.NewHTTPError(http.StatusForbidden, "Permission denied")
	errNotFound     = echo.NewHTTPError(http.StatusNotFound, "Not found")
	errBadLogin     = echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
)

// default student passwords, handed out in order
var animals = []string{"fox", "owl", "cat", "dog", "cow", "pig", "bee", "elk", "yak", "emu"}

// claims of the auth tokens; Id (jti) is unique per token so a revoked token never matches a new one.
type claims struct {
	jwt.StandardClaims
	TeacherID int `json:"teacher_id"`
}

type teacher struct {
	models.Teacher
	hash []byte
}

// Server serves the /api/v1 endpoints from memory. Use New and Close it when done.
type Server struct {
	*httptest.Server
	app    *echo.Echo
	secret []byte

	mu          sync.Mutex
	seq         int
	teachers    map[int]*teacher
	students    map[int]*models.Student
	problems    map[int]*models.Problem
	rewards     map[int]*models.Reward
	revoked     map[string]bool
	resetTokens map[string]int
	lastReset   string
	failures    map[string]string
	requests    []string
}

func New() *Server {
	s := &Server{
		app:         echo.New(),
		secret:      []byte(uuid.New().String()),
		teachers:    make(map[int]*teacher),
		students:    make(map[int]*models.Student),
		problems:    make(map[int]*models.Problem),
		rewards:     make(map[int]*models.Reward),
		revoked:     make(map[string]bool),
		resetTokens: make(map[string]int),
		failures:    make(map[string]string),
	}
	s.setup()
	s.Server = httptest.NewServer(s.app)
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Logger.SetLevel(log.OFF)
	s.app.HTTPErrorHandler = errorHandler

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(s.record, s.failure)

	v1 := s.app.Group("/api/v1")
	auth := s.authenticate

	v1.POST("/auth-tokens", s.createAuthToken)
	v1.DELETE("/auth-tokens", s.deleteAuthTokens, auth)
	v1.POST("/password-reset-tokens", s.createPasswordResetToken)
	v1.POST("/password-reset-tokens/:token", s.resetPassword)

	v1.POST("/teachers", s.createTeacher)
	v1.PATCH("/teachers/:id", s.updateTeacher, auth)

	v1.GET("/students", s.listStudents, auth)
	v1.POST("/students", s.createStudent, auth)
	v1.GET("/students/:id", s.getStudent, auth)
	v1.PATCH("/students/:id", s.updateStudent, auth)
	v1.DELETE("/students/:id", s.deleteStudent, auth)
	v1.POST("/students/:id/actions", s.studentAction, auth)

	v1.POST("/problems", s.createProblems, auth)
	v1.PATCH("/problems/:id", s.updateProblem, auth)
	v1.POST("/sample-problems", s.createSampleProblem, auth)
	v1.PATCH("/powerups/:id", s.updatePowerup, auth)

	v1.GET("/rewards", s.listRewards, auth)
	v1.POST("/rewards", s.createReward, auth)
	v1.DELETE("/rewards/:id", s.deleteReward, auth)

	v1.GET("/reports/:id", s.getReport, auth)
	v1.GET("/skills", s.listSkills)
}

// Fail makes every `method path` request answer with an application error carrying msg.
// path has no query string, e.g. client.URIFor(client.Students, 1, nil).
func (s *Server) Fail(method, path, msg string) {
	s.mu.Lock()
	s.failures[method+" "+path] = msg
	s.mu.Unlock()
}

// Recover undoes Fail.
func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	delete(s.failures, method+" "+path)
	s.mu.Unlock()
}

// LastResetToken is the last password reset token issued; the real server mails it.
func (s *Server) LastResetToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReset
}

// Requests lists the `METHOD path` of every request received, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// AddTeacher creates a teacher without going through the API.
func (s *Server) AddTeacher(name, email, password string) models.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.newTeacher(name, email, password)
	if err != nil {
		panic(err)
	}
	return t.Teacher
}

// AddStudent creates a student of a teacher without going through the API.
func (s *Server) AddStudent(teacherID int, name string) models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.newStudent(teacherID, name)
}

// Student returns the server copy of a student.
func (s *Server) Student(id int) (models.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return models.Student{}, false
	}
	return *st, true
}

// Token issues an auth token for a teacher.
func (s *Server) Token(teacherID int) string {
	tok, err := s.issueToken(teacherID)
	if err != nil {
		panic(err)
	}
	return tok
}

// helpers; callers hold s.mu unless stated otherwise

func (s *Server) nextID() int {
	s.seq++
	return s.seq
}

func (s *Server) newTeacher(name, email, password string) (*teacher, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	t := &teacher{Teacher: models.Teacher{ID: s.nextID(), Name: name, Email: email}, hash: hash}
	s.teachers[t.ID] = t
	return t, nil
}

func (s *Server) newStudent(teacherID int, name string) *models.Student {
	id := s.nextID()
	st := &models.Student{
		ID:         id,
		Name:       name,
		Password:   animals[len(s.students)%len(animals)],
		TeacherID:  teacherID,
		MathSkill:  "Addition",
		Difficulty: 1,
		Powerups: []models.Powerup{
			{ID: 1, Name: "skip", Cnt: 1},
			{ID: 2, Name: "hint", Cnt: 1},
		},
	}
	s.students[id] = st
	return st
}

// issueToken is safe without s.mu.
func (s *Server) issueToken(teacherID int) (string, error) {
	now := time.Now()
	c := &claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    "MathBombs",
			Subject:   fmt.Sprint(teacherID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
		TeacherID: teacherID,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (s *Server) parseToken(raw string) (*claims, error) {
	c := new(claims)
	_, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// middlewares

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		s.mu.Lock()
		s.requests = append(s.requests, req.Method+" "+req.URL.Path)
		s.mu.Unlock()
		return next(ctx)
	}
}

func (s *Server) failure(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		s.mu.Lock()
		msg, ok := s.failures[req.Method+" "+req.URL.Path]
		s.mu.Unlock()
		if ok {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, msg)
		}
		return next(ctx)
	}
}

// authenticate reads the bare JWT from the x-auth-token header.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		raw := ctx.Request().Header.Get(client.HeaderAuthToken)
		if raw == "" {
			return errUnauthorized
		}
		c, err := s.parseToken(raw)
		if err != nil {
			return errUnauthorized
		}

		s.mu.Lock()
		_, exists := s.teachers[c.TeacherID]
		revoked := s.revoked[c.Id]
		s.mu.Unlock()
		if !exists || revoked {
			return errUnauthorized
		}

		ctx.Set(contextTeacherKey, c.TeacherID)
		ctx.Set("tokenID", c.Id)
		return next(ctx)
	}
}

// errorHandler writes every error in the `{"error": ...}` envelope.
func errorHandler(err error, ctx echo.Context) {
	code := http.StatusInternalServerError
	var msg interface{} = http.StatusText(code)
	if he, ok := errors.Cause(err).(*echo.HTTPError); ok {
		code = he.Code
		msg = he.Message
	}

	if ctx.Response().Committed {
		return
	}
	if err = ctx.JSON(code, echo.Map{"error": msg}); err != nil {
		ctx.Echo().Logger.Error(err)
	}
}

func ok(ctx echo.Context, data interface{}) error {
	return ctx.JSON(http.StatusOK, echo.Map{"data": data})
}

func fieldError(field, msg string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]string{field: msg})
}

func contextTeacher(ctx echo.Context) int {
	id, _ := ctx.Get(contextTeacherKey).(int)
	return id
}
