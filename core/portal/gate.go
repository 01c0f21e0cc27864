package portal

import (
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/session"
)

// PasswordPrompt is the question asked by Gate.Challenge.
const PasswordPrompt = "What is your password?"

var (
	// ErrInvalidPassword is the only failure a student ever sees: it does not tell
	// whether the student or the password was wrong.
	ErrInvalidPassword = errors.New("invalid password")
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Prompter asks the user for a line of input; ok is false when the user cancelled.
type Prompter interface {
	Prompt(msg string) (answer string, ok bool)
}

type PromptFunc func(msg string) (string, bool)

func (f PromptFunc) Prompt(msg string) (string, bool) { return f(msg) }

// SheetURL is the navigation target of a student's workbook sheet.
func SheetURL(studentID, sheet int) string {
	return fmt.Sprintf("/students/%d/sheets/%d", studentID, sheet)
}

// Gate hands the session over to a student who knows their password.
//
// The password is compared with the copy held in the fetched student record; the server is never
// asked. This is a weak shared-secret model kept for compatibility: anyone able to fetch the
// roster can read every password.
type Gate struct {
	session *session.Session

	mu      sync.Mutex
	state   State
	student *models.Student
	target  string
	notice  string
	prior   session.Principal // principal before the student was bound
}

func NewGate(sess *session.Session) *Gate {
	vala.BeginValidation().Validate(
		vala.IsNotNil(sess, "session"),
	).CheckAndPanic()
	return &Gate{session: sess}
}

// Verify checks the candidate password. On success the session is bound to the student and the
// sheet to resume is returned. An empty candidate never matches, and a mismatch signs out any
// student a previous check let in.
func (g *Gate) Verify(st models.Student, candidate string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if candidate == "" || subtle.ConstantTimeCompare([]byte(candidate), []byte(st.Password)) != 1 {
		return "", g.reject()
	}

	if g.state != Authenticated {
		g.prior = g.session.Principal()
	}
	g.session.BindStudent(session.Principal{ID: st.ID, Name: st.Name})
	g.state = Authenticated
	g.student = &st
	g.target = SheetURL(st.ID, st.NextSheet())
	g.notice = ""
	return g.target, nil
}

// reject resets the gate to Unauthenticated and sets the notice. g.mu must be held.
func (g *Gate) reject() error {
	if g.state == Authenticated {
		g.session.UnbindStudent(g.prior)
	}
	g.state = Unauthenticated
	g.student = nil
	g.target = ""
	g.prior = session.Principal{}
	g.notice = ErrInvalidPassword.Error()
	return ErrInvalidPassword
}

// Challenge prompts for the password then verifies it. A cancelled prompt changes nothing.
func (g *Gate) Challenge(st models.Student, p Prompter) (string, error) {
	answer, ok := p.Prompt(PasswordPrompt)
	if !ok {
		return "", nil
	}
	return g.Verify(st, answer)
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Student is the authenticated student, or nil.
func (g *Gate) Student() *models.Student {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.student
}

// Target is the navigation target of the last successful check.
func (g *Gate) Target() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

// Notice is the message to show after a failed check.
func (g *Gate) Notice() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notice
}

func (g *Gate) DismissNotice() {
	g.mu.Lock()
	g.notice = ""
	g.mu.Unlock()
}
