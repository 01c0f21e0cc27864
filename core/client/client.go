// Package client is the single point through which MathBombs server resources are fetched and mutated.
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core"
	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/session"
)

// Requester sends one request and returns its envelope; *Transport implements it.
type Requester interface {
	Request(ctx context.Context, method, uri string, body interface{}, token string) Envelope
}

// Client exposes one method per server capability. Every method returns a Result and a nil error,
// or a *Error describing a validation, application or transport failure.
type Client struct {
	transport  Requester
	session    *session.Session
	validate   *validator.Validate
	translator ut.Translator
}

func New(transport Requester, sess *session.Session, validate *validator.Validate, translator ut.Translator) *Client {
	vala.BeginValidation().Validate(
		vala.IsNotNil(transport, "transport"),
		vala.IsNotNil(sess, "session"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(translator, "translator"),
	).CheckAndPanic()

	return &Client{
		transport:  transport,
		session:    sess,
		validate:   validate,
		translator: translator,
	}
}

func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) call(ctx context.Context, method, uri string, body interface{}) Envelope {
	return c.transport.Request(ctx, method, uri, body, c.session.Token())
}

func (c *Client) validateStruct(s interface{}) error {
	return core.ValidateStruct(c.validate, c.translator, s)
}

// requireID reports a missing (zero) id the same way the validator reports a missing field.
func (c *Client) requireID(id int, label string) error {
	if id != 0 {
		return nil
	}
	msg, _ := c.translator.T("required", label)
	return core.NewValidationError(nil, core.FieldError{Field: label, Error: msg})
}

func invalid[T any](err error) (Result[T], error) {
	env := localError(err)
	return Result[T]{Envelope: env}, env.Err()
}

// Auth

func (c *Client) CreateAuthToken(ctx context.Context, data models.NewAuthToken) (Result[models.AuthToken], error) {
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := c.validateStruct(data); err != nil {
		return invalid[models.AuthToken](err)
	}
	res, err := decode[models.AuthToken](c.call(ctx, http.MethodPost, URIFor(AuthTokens, nil, nil), data))
	if err != nil {
		return res, err
	}
	return res, c.signIn(res)
}

func (c *Client) signIn(res Result[models.AuthToken]) error {
	if res.Data.Token == "" {
		return decodeError(res.Envelope, errors.New("auth token missing from response"))
	}
	p := session.Principal{Kind: session.KindTeacher}
	if t := res.Data.Teacher; t != nil {
		p.ID = t.ID
		p.Name = t.Name
	}
	return c.session.SignIn(res.Data.Token, p)
}

// DeleteAuthTokens signs out. The local session is cleared whatever the server answers.
func (c *Client) DeleteAuthTokens(ctx context.Context) (Result[models.Notice], error) {
	env := c.call(ctx, http.MethodDelete, URIFor(AuthTokens, nil, nil), nil)
	clearErr := c.session.Clear()
	res, err := decode[models.Notice](env)
	if err != nil {
		return res, err
	}
	return res, clearErr
}

func (c *Client) CreatePasswordResetToken(ctx context.Context, email string) (Result[models.Notice], error) {
	data := models.PasswordResetRequest{Email: core.CleanString(email, true /* lower */)}
	if err := c.validateStruct(data); err != nil {
		return invalid[models.Notice](err)
	}
	return decode[models.Notice](c.call(ctx, http.MethodPost, URIFor(PasswordResetTokens, nil, nil), data))
}

func (c *Client) ResetPassword(ctx context.Context, data models.PasswordReset) (Result[models.Notice], error) {
	data.Token = core.CleanString(data.Token)
	if err := c.validateStruct(data); err != nil {
		return invalid[models.Notice](err)
	}
	return decode[models.Notice](c.call(ctx, http.MethodPost, URIFor(PasswordResetTokens, data.Token, nil), data))
}

// Teachers

// CreateTeacher signs a new teacher up; on success the teacher is signed in.
func (c *Client) CreateTeacher(ctx context.Context, data models.NewTeacher) (Result[models.AuthToken], error) {
	data.Name = core.CleanString(data.Name)
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := c.validateStruct(data); err != nil {
		return invalid[models.AuthToken](err)
	}
	res, err := decode[models.AuthToken](c.call(ctx, http.MethodPost, URIFor(Teachers, nil, nil), data))
	if err != nil {
		return res, err
	}
	return res, c.signIn(res)
}

func (c *Client) UpdateTeacher(ctx context.Context, id int, data models.TeacherUpdate) (Result[models.Teacher], error) {
	if err := c.requireID(id, "teacher id"); err != nil {
		return invalid[models.Teacher](err)
	}
	data.Name = core.CleanString(data.Name)
	data.Email = core.CleanString(data.Email, true /* lower */)
	return decode[models.Teacher](c.call(ctx, http.MethodPatch, URIFor(Teachers, id, nil), data))
}

// Students

// GetStudents lists a teacher's roster in server order. Meta.Teacher holds the teacher.
func (c *Client) GetStudents(ctx context.Context, teacherID int) (Result[[]models.Student], error) {
	if err := c.requireID(teacherID, "teacher id"); err != nil {
		return invalid[[]models.Student](err)
	}
	q := url.Values{"teacher_id": {strconv.Itoa(teacherID)}}
	return decode[[]models.Student](c.call(ctx, http.MethodGet, URIFor(Students, nil, q), nil))
}

func (c *Client) GetStudent(ctx context.Context, id int) (Result[models.Student], error) {
	if err := c.requireID(id, "student id"); err != nil {
		return invalid[models.Student](err)
	}
	return decode[models.Student](c.call(ctx, http.MethodGet, URIFor(Students, id, nil), nil))
}

func (c *Client) CreateStudent(ctx context.Context, data models.NewStudent) (Result[models.Student], error) {
	data.Name = core.CleanString(data.Name)
	if err := c.validateStruct(data); err != nil {
		return invalid[models.Student](err)
	}
	return decode[models.Student](c.call(ctx, http.MethodPost, URIFor(Students, nil, nil), data))
}

// UpdateStudent sends the changed fields along with the student id.
func (c *Client) UpdateStudent(ctx context.Context, id int, data models.StudentUpdate) (Result[models.Student], error) {
	data.StudentID = id
	if err := c.validateStruct(data); err != nil {
		return invalid[models.Student](err)
	}
	return decode[models.Student](c.call(ctx, http.MethodPatch, URIFor(Students, id, nil), data))
}

func (c *Client) DeleteStudent(ctx context.Context, id int) (Result[models.Student], error) {
	if err := c.requireID(id, "student id"); err != nil {
		return invalid[models.Student](err)
	}
	return decode[models.Student](c.call(ctx, http.MethodDelete, URIFor(Students, id, nil), nil))
}

// Problems

// CreateProblems generates the batch of problems of one workbook sheet.
func (c *Client) CreateProblems(ctx context.Context, data models.NewProblems) (Result[[]models.Problem], error) {
	if err := c.validateStruct(data); err != nil {
		return invalid[[]models.Problem](err)
	}
	return decode[[]models.Problem](c.call(ctx, http.MethodPost, URIFor(Problems, nil, nil), data))
}

func (c *Client) UpdateProblem(ctx context.Context, problem models.Problem) (Result[models.Problem], error) {
	if err := c.requireID(problem.ID, "problem id"); err != nil {
		return invalid[models.Problem](err)
	}
	return decode[models.Problem](c.call(ctx, http.MethodPatch, URIFor(Problems, problem.ID, nil), problem))
}

// CreateSampleProblem unwraps the `{type, attributes}` data of the sample-problems endpoint.
func (c *Client) CreateSampleProblem(ctx context.Context, studentID int) (Result[models.Problem], error) {
	if err := c.requireID(studentID, "student id"); err != nil {
		return invalid[models.Problem](err)
	}
	body := map[string]int{"student_id": studentID}
	raw, err := decode[struct {
		Type       string         `json:"type"`
		Attributes models.Problem `json:"attributes"`
	}](c.call(ctx, http.MethodPost, URIFor(SampleProblems, nil, nil), body))

	res := Result[models.Problem]{Data: raw.Data.Attributes, Meta: raw.Meta, Envelope: raw.Envelope}
	if res.Data.Type == "" {
		res.Data.Type = raw.Data.Type
	}
	return res, err
}

// Powerups

// UsePowerup spends one powerup of a student and returns the updated student.
func (c *Client) UsePowerup(ctx context.Context, studentID, powerupID int) (Result[models.Student], error) {
	data := models.PowerupAction{Action: "use-powerup", StudentID: studentID, PowerupID: powerupID}
	if err := c.validateStruct(data); err != nil {
		return invalid[models.Student](err)
	}
	uri := URIFor(Students, studentID, nil) + "/actions"
	return decode[models.Student](c.call(ctx, http.MethodPost, uri, data))
}

func (c *Client) UpdatePowerup(ctx context.Context, data models.PowerupUpdate) (Result[models.Powerup], error) {
	if err := c.validateStruct(data); err != nil {
		return invalid[models.Powerup](err)
	}
	q := url.Values{"student_id": {strconv.Itoa(data.StudentID)}}
	return decode[models.Powerup](c.call(ctx, http.MethodPatch, URIFor(Powerups, data.PowerupID, q), data))
}

// Rewards

func (c *Client) GetRewards(ctx context.Context, studentID int) (Result[[]models.Reward], error) {
	if err := c.requireID(studentID, "student id"); err != nil {
		return invalid[[]models.Reward](err)
	}
	q := url.Values{"student_id": {strconv.Itoa(studentID)}}
	return decode[[]models.Reward](c.call(ctx, http.MethodGet, URIFor(Rewards, nil, q), nil))
}

func (c *Client) CreateReward(ctx context.Context, data models.NewReward) (Result[models.Reward], error) {
	data.Name = core.CleanString(data.Name)
	if err := c.validateStruct(data); err != nil {
		return invalid[models.Reward](err)
	}
	return decode[models.Reward](c.call(ctx, http.MethodPost, URIFor(Rewards, nil, nil), data))
}

func (c *Client) DeleteReward(ctx context.Context, rewardID int) (Result[models.Reward], error) {
	if err := c.requireID(rewardID, "reward id"); err != nil {
		return invalid[models.Reward](err)
	}
	return decode[models.Reward](c.call(ctx, http.MethodDelete, URIFor(Rewards, rewardID, nil), nil))
}

// Reports & skills

func (c *Client) GetReport(ctx context.Context, studentID int) (Result[models.Report], error) {
	if err := c.requireID(studentID, "student id"); err != nil {
		return invalid[models.Report](err)
	}
	return decode[models.Report](c.call(ctx, http.MethodGet, URIFor(Reports, studentID, nil), nil))
}

func (c *Client) GetSkills(ctx context.Context) (Result[[]models.Skill], error) {
	return decode[[]models.Skill](c.call(ctx, http.MethodGet, URIFor(Skills, nil, nil), nil))
}
