package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mathbombs/core/models"
)

var skills = []models.Skill{
	{ID: "Addition", Name: "Addition"},
	{ID: "Subtraction", Name: "Subtraction"},
	{ID: "AdditionWithCarrying", Name: "AdditionWithCarrying"},
	{ID: "SubtractionWithBorrowing", Name: "SubtractionWithBorrowing"},
	{ID: "Multiplication", Name: "Multiplication"},
}

const problemsPerSheet = 3

func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errNotFound
	}
	return id, nil
}

func intQuery(ctx echo.Context, name string) int {
	v, _ := strconv.Atoi(ctx.QueryParam(name))
	return v
}

// ownStudent returns the student if it belongs to the authenticated teacher. Callers hold s.mu.
func (s *Server) ownStudent(ctx echo.Context, id int) (*models.Student, error) {
	st, ok := s.students[id]
	if !ok {
		return nil, errNotFound
	}
	if st.TeacherID != contextTeacher(ctx) {
		return nil, errForbidden
	}
	return st, nil
}

// Auth

func (s *Server) createAuthToken(ctx echo.Context) error {
	var data models.NewAuthToken
	if err := ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	var found *teacher
	for _, t := range s.teachers {
		if strings.EqualFold(t.Email, data.Email) {
			found = t
			break
		}
	}
	s.mu.Unlock()
	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(data.Password)) != nil {
		return errBadLogin
	}

	tok, err := s.issueToken(found.ID)
	if err != nil {
		return err
	}
	t := found.Teacher
	return ok(ctx, models.AuthToken{Token: tok, Teacher: &t})
}

func (s *Server) deleteAuthTokens(ctx echo.Context) error {
	id, _ := ctx.Get("tokenID").(string)
	s.mu.Lock()
	s.revoked[id] = true
	s.mu.Unlock()
	return ok(ctx, models.Notice{Message: "Signed out"})
}

func (s *Server) createPasswordResetToken(ctx echo.Context) error {
	var data models.PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	for _, t := range s.teachers {
		if strings.EqualFold(t.Email, data.Email) {
			tok := uuid.New().String()
			s.resetTokens[tok] = t.ID
			s.lastReset = tok
			break
		}
	}
	s.mu.Unlock()
	// same answer whether the email is known or not
	return ok(ctx, models.Notice{Message: "Check your email for a link to reset your password"})
}

func (s *Server) resetPassword(ctx echo.Context) error {
	var data models.PasswordReset
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if data.Password == "" {
		return fieldError("password", "Password can't be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tok := ctx.Param("token")
	id, found := s.resetTokens[tok]
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "Invalid or expired reset token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.teachers[id].hash = hash
	delete(s.resetTokens, tok)
	return ok(ctx, models.Notice{Message: "Your password has been reset"})
}

// Teachers

func (s *Server) createTeacher(ctx echo.Context) error {
	var data models.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	for _, t := range s.teachers {
		if strings.EqualFold(t.Email, data.Email) {
			s.mu.Unlock()
			return fieldError("email", "Email has already been taken")
		}
	}
	t, err := s.newTeacher(data.Name, data.Email, data.Password)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	tok, err := s.issueToken(t.ID)
	if err != nil {
		return err
	}
	usr := t.Teacher
	return ok(ctx, models.AuthToken{Token: tok, Teacher: &usr})
}

func (s *Server) updateTeacher(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if id != contextTeacher(ctx) {
		return errForbidden
	}
	var data models.TeacherUpdate
	if err = ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.teachers[id]
	if data.Name != "" {
		t.Name = data.Name
	}
	if data.Email != "" {
		t.Email = data.Email
	}
	if data.Password != "" {
		if t.hash, err = bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.MinCost); err != nil {
			return err
		}
	}
	return ok(ctx, t.Teacher)
}

// Students

func (s *Server) listStudents(ctx echo.Context) error {
	teacherID := intQuery(ctx, "teacher_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	t, found := s.teachers[teacherID]
	if !found {
		return errNotFound
	}

	students := make([]models.Student, 0)
	for _, st := range s.students {
		if st.TeacherID == teacherID {
			students = append(students, *st)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return ctx.JSON(http.StatusOK, echo.Map{
		"data": students,
		"meta": echo.Map{"teacher": t.Teacher, "total": len(students)},
	})
}

func (s *Server) getStudent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, id)
	if err != nil {
		return err
	}
	return ok(ctx, st)
}

func (s *Server) createStudent(ctx echo.Context) error {
	var data models.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if strings.TrimSpace(data.Name) == "" {
		return fieldError("name", "Name can't be blank")
	}
	teacherID := contextTeacher(ctx)
	if data.TeacherID != 0 && data.TeacherID != teacherID {
		return errForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ok(ctx, s.newStudent(teacherID, data.Name))
}

func (s *Server) updateStudent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data models.StudentUpdate
	if err = ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, id)
	if err != nil {
		return err
	}
	if data.Name != nil {
		if strings.TrimSpace(*data.Name) == "" {
			return fieldError("name", "Name can't be blank")
		}
		st.Name = *data.Name
	}
	if data.Password != nil {
		if *data.Password == "" {
			return fieldError("password", "Password can't be blank")
		}
		st.Password = *data.Password
	}
	if data.MathSkill != nil {
		st.MathSkill = *data.MathSkill
	}
	if data.Difficulty != nil {
		st.Difficulty = *data.Difficulty
	}
	return ok(ctx, st)
}

func (s *Server) deleteStudent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, id)
	if err != nil {
		return err
	}
	delete(s.students, id)
	return ok(ctx, st)
}

func (s *Server) studentAction(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data models.PowerupAction
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if data.Action != "use-powerup" {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Unknown action %q", data.Action))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, id)
	if err != nil {
		return err
	}
	for i := range st.Powerups {
		if st.Powerups[i].ID == data.PowerupID {
			if st.Powerups[i].Cnt == 0 {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, "No powerups left")
			}
			st.Powerups[i].Cnt--
			return ok(ctx, st)
		}
	}
	return errNotFound
}

func (s *Server) updatePowerup(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data models.PowerupUpdate
	if err = ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, intQuery(ctx, "student_id"))
	if err != nil {
		return err
	}
	for i := range st.Powerups {
		if st.Powerups[i].ID == id {
			st.Powerups[i].Cnt = data.Cnt
			return ok(ctx, st.Powerups[i])
		}
	}
	return errNotFound
}

// Problems

func question(seed int) (string, string) {
	a, b := seed%9+1, (seed*7)%9+1
	return fmt.Sprintf("%d + %d", a, b), strconv.Itoa(a + b)
}

func (s *Server) createProblems(ctx echo.Context) error {
	var data models.NewProblems
	if err := ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, data.StudentID)
	if err != nil {
		return err
	}
	problems := make([]models.Problem, 0, problemsPerSheet)
	for i := 0; i < problemsPerSheet; i++ {
		id := s.nextID()
		q, a := question(id)
		p := &models.Problem{ID: id, StudentID: st.ID, SheetID: data.SheetID, Type: st.MathSkill, Question: q, Answer: a}
		s.problems[id] = p
		problems = append(problems, *p)
	}
	return ok(ctx, problems)
}

func (s *Server) updateProblem(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data models.Problem
	if err = ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.problems[id]
	if !found {
		return errNotFound
	}
	st, err := s.ownStudent(ctx, p.StudentID)
	if err != nil {
		return err
	}
	p.Guess = data.Guess
	p.IsSolved = strings.TrimSpace(data.Guess) == p.Answer

	// a fully solved sheet moves the student on
	solved := true
	for _, other := range s.problems {
		if other.StudentID == st.ID && other.SheetID == p.SheetID && !other.IsSolved {
			solved = false
			break
		}
	}
	if solved && p.SheetID > st.LastSheet {
		st.LastSheet = p.SheetID
	}
	return ok(ctx, p)
}

func (s *Server) createSampleProblem(ctx echo.Context) error {
	var data struct {
		StudentID int `json:"student_id"`
	}
	if err := ctx.Bind(&data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, data.StudentID)
	if err != nil {
		return err
	}
	q, a := question(st.ID)
	return ok(ctx, echo.Map{
		"type":       st.MathSkill,
		"attributes": models.Problem{StudentID: st.ID, Question: q, Answer: a},
	})
}

// Rewards

func (s *Server) listRewards(ctx echo.Context) error {
	studentID := intQuery(ctx, "student_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownStudent(ctx, studentID); err != nil {
		return err
	}
	rewards := make([]models.Reward, 0)
	for _, r := range s.rewards {
		if r.StudentID == studentID {
			rewards = append(rewards, *r)
		}
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].ID < rewards[j].ID })
	return ok(ctx, rewards)
}

func (s *Server) createReward(ctx echo.Context) error {
	var data models.NewReward
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if strings.TrimSpace(data.Name) == "" {
		return fieldError("name", "Name can't be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownStudent(ctx, data.StudentID); err != nil {
		return err
	}
	r := &models.Reward{ID: s.nextID(), StudentID: data.StudentID, SheetID: data.SheetID, Name: data.Name}
	s.rewards[r.ID] = r
	return ok(ctx, r)
}

func (s *Server) deleteReward(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, found := s.rewards[id]
	if !found {
		return errNotFound
	}
	if _, err = s.ownStudent(ctx, r.StudentID); err != nil {
		return err
	}
	delete(s.rewards, id)
	return ok(ctx, r)
}

// Reports & skills

func (s *Server) getReport(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.ownStudent(ctx, id)
	if err != nil {
		return err
	}

	bySheet := make(map[int]*models.SheetSummary)
	for _, p := range s.problems {
		if p.StudentID != st.ID {
			continue
		}
		sum, found := bySheet[p.SheetID]
		if !found {
			sum = &models.SheetSummary{SheetID: p.SheetID}
			bySheet[p.SheetID] = sum
		}
		sum.NumProblems++
		if p.IsSolved {
			sum.NumSolved++
		}
	}
	sheets := make([]models.SheetSummary, 0, len(bySheet))
	for _, sum := range bySheet {
		sheets = append(sheets, *sum)
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].SheetID < sheets[j].SheetID })

	return ok(ctx, models.Report{
		StudentID:  st.ID,
		MathSkill:  st.MathSkill,
		Difficulty: st.Difficulty,
		LastSheet:  st.LastSheet,
		Sheets:     sheets,
	})
}

func (s *Server) listSkills(ctx echo.Context) error {
	return ok(ctx, skills)
}
