// Package roster is the teacher's student management screen state.
package roster

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/store"
)

var errNoStudentID = errors.New("server did not return the new student")

// Service is the part of client.Client the roster uses.
type Service interface {
	GetStudents(ctx context.Context, teacherID int) (client.Result[[]models.Student], error)
	CreateStudent(ctx context.Context, data models.NewStudent) (client.Result[models.Student], error)
	UpdateStudent(ctx context.Context, id int, data models.StudentUpdate) (client.Result[models.Student], error)
	DeleteStudent(ctx context.Context, id int) (client.Result[models.Student], error)
}

type Roster struct {
	svc       Service
	teacherID int
	students  *store.Store[models.Student]

	mu            sync.Mutex
	teacher       *models.Teacher
	passwords     map[int]*store.Field[string]
	saving        map[int]bool // rows whose password is being saved
	showPasswords bool
}

func New(svc Service, teacherID int) *Roster {
	return &Roster{
		svc:       svc,
		teacherID: teacherID,
		students:  store.New[models.Student](),
		passwords: make(map[int]*store.Field[string]),
		saving:    make(map[int]bool),
	}
}

func (r *Roster) TeacherID() int {
	return r.teacherID
}

// PortalURL is where the teacher's students sign in.
func (r *Roster) PortalURL() string {
	return "/portals/" + strconv.Itoa(r.teacherID)
}

// Load fetches the roster. On failure the previous roster stays visible with the error.
func (r *Roster) Load(ctx context.Context) error {
	var teacher *models.Teacher
	err := r.students.Load(ctx, func(ctx context.Context) ([]models.Student, error) {
		res, err := r.svc.GetStudents(ctx, r.teacherID)
		if err != nil {
			return nil, err
		}
		teacher = res.Meta.Teacher
		return res.Data, nil
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if teacher != nil {
		r.teacher = teacher
	}
	loaded := make(map[int]*store.Field[string])
	for _, st := range r.students.Items() {
		fld, ok := r.passwords[st.ID]
		if !ok {
			fld = store.NewField(st.Password)
		} else {
			fld.Reset(st.Password)
		}
		loaded[st.ID] = fld
	}
	r.passwords = loaded
	return nil
}

// Add creates a student; the row appears once the server returns it with its id.
func (r *Roster) Add(ctx context.Context, name string) (models.Student, error) {
	st, err := r.students.Create(ctx, func(ctx context.Context) (models.Student, error) {
		res, err := r.svc.CreateStudent(ctx, models.NewStudent{Name: name, TeacherID: r.teacherID})
		if err != nil {
			return models.Student{}, err
		}
		if res.Data.ID == 0 {
			return models.Student{}, errNoStudentID
		}
		return res.Data, nil
	})
	if err != nil {
		return st, err
	}

	r.mu.Lock()
	r.passwords[st.ID] = store.NewField(st.Password)
	r.mu.Unlock()
	return st, nil
}

// PasswordField is the editable password of a student, or nil if the student is unknown.
func (r *Roster) PasswordField(id int) *store.Field[string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fld, ok := r.passwords[id]; ok {
		return fld
	}
	st, ok := r.students.Get(id)
	if !ok {
		return nil
	}
	fld := store.NewField(st.Password)
	r.passwords[id] = fld
	return fld
}

// SetPassword edits the student's password field and saves it. The field is committed when the
// server confirms the change and reverted to the last confirmed password when it fails.
func (r *Roster) SetPassword(ctx context.Context, id int, password string) (models.Student, error) {
	fld := r.PasswordField(id)
	if fld == nil {
		return models.Student{}, store.ErrNotFound
	}
	// claim the row before touching the draft so a rejected save never clobbers the one in flight
	r.mu.Lock()
	if r.saving[id] || r.students.RowPending(id) {
		r.mu.Unlock()
		return models.Student{}, store.ErrPending
	}
	r.saving[id] = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.saving, id)
		r.mu.Unlock()
	}()
	fld.Edit(password)

	st, err := r.students.Update(ctx, id, func(ctx context.Context, cur models.Student) (models.Student, error) {
		pwd := password
		res, err := r.svc.UpdateStudent(ctx, id, models.StudentUpdate{Password: &pwd})
		if err != nil {
			return cur, err
		}
		if res.Data.ID == id {
			return res.Data, nil
		}
		// the endpoint does not always echo the student back
		cur.Password = password
		return cur, nil
	})
	if err != nil {
		if err != store.ErrPending {
			fld.Revert()
		}
		return st, err
	}
	fld.Reset(st.Password)
	return st, nil
}

// Remove deletes a student after the teacher confirms.
func (r *Roster) Remove(ctx context.Context, id int, confirm store.Confirmer) (bool, error) {
	st, ok := r.students.Get(id)
	if !ok {
		return false, store.ErrNotFound
	}
	prompt := fmt.Sprintf("Are you sure you want to delete %s?", st.Name)
	removed, err := r.students.Remove(ctx, id, prompt, confirm, func(ctx context.Context, cur models.Student) error {
		_, err := r.svc.DeleteStudent(ctx, cur.ID)
		return err
	})
	if removed {
		r.mu.Lock()
		delete(r.passwords, id)
		r.mu.Unlock()
	}
	return removed, err
}

func (r *Roster) Students() []models.Student {
	return r.students.Items()
}

func (r *Roster) Snapshot() store.Snapshot[models.Student] {
	return r.students.Snapshot()
}

func (r *Roster) Pending() bool {
	return r.students.Pending()
}

func (r *Roster) RowPending(id int) bool {
	return r.students.RowPending(id)
}

func (r *Roster) ErrorMessage() string {
	return r.students.ErrorMessage()
}

func (r *Roster) DismissError() {
	r.students.DismissError()
}

// Teacher is the roster owner as returned with the last successful load.
func (r *Roster) Teacher() *models.Teacher {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teacher
}

func (r *Roster) ShowPasswords() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.showPasswords
}

func (r *Roster) SetShowPasswords(show bool) {
	r.mu.Lock()
	r.showPasswords = show
	r.mu.Unlock()
}
