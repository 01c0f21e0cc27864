// Package portal is the student portal: a teacher's students pick their name and type their password.
package portal

import (
	"context"
	"sync"

	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/session"
	"github.com/trezcool/mathbombs/core/store"
)

// Service is the part of client.Client the portal uses.
type Service interface {
	GetStudents(ctx context.Context, teacherID int) (client.Result[[]models.Student], error)
}

type Portal struct {
	svc       Service
	teacherID int
	students  *store.Store[models.Student]
	gate      *Gate

	mu      sync.Mutex
	teacher *models.Teacher
}

func New(svc Service, sess *session.Session, teacherID int) *Portal {
	return &Portal{
		svc:       svc,
		teacherID: teacherID,
		students:  store.New[models.Student](),
		gate:      NewGate(sess),
	}
}

func (p *Portal) Load(ctx context.Context) error {
	var teacher *models.Teacher
	err := p.students.Load(ctx, func(ctx context.Context) ([]models.Student, error) {
		res, err := p.svc.GetStudents(ctx, p.teacherID)
		teacher = res.Meta.Teacher
		return res.Data, err
	})
	if err == nil && teacher != nil {
		p.mu.Lock()
		p.teacher = teacher
		p.mu.Unlock()
	}
	return err
}

// SignIn challenges the student for their password and returns the sheet to navigate to.
// It returns "" and a nil error when the student cancelled.
func (p *Portal) SignIn(studentID int, prompter Prompter) (string, error) {
	st, ok := p.students.Get(studentID)
	if !ok {
		// same answer as a wrong password
		p.gate.mu.Lock()
		defer p.gate.mu.Unlock()
		return "", p.gate.reject()
	}
	return p.gate.Challenge(st, prompter)
}

// FindByName returns the first student with this name.
func (p *Portal) FindByName(name string) (models.Student, bool) {
	for _, st := range p.students.Items() {
		if st.Name == name {
			return st, true
		}
	}
	return models.Student{}, false
}

func (p *Portal) Students() []models.Student {
	return p.students.Items()
}

func (p *Portal) Gate() *Gate {
	return p.gate
}

func (p *Portal) Teacher() *models.Teacher {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.teacher
}

func (p *Portal) ErrorMessage() string {
	return p.students.ErrorMessage()
}

func (p *Portal) DismissError() {
	p.students.DismissError()
}
