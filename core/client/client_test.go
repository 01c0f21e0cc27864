package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/session"
	"github.com/trezcool/mathbombs/tests"
	"github.com/trezcool/mathbombs/tests/fakeapi"
)

var ctx = context.Background()

func setup(t *testing.T) (*fakeapi.Server, *client.Client) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	return srv, testutil.NewClient(t, srv.URL)
}

func strPtr(s string) *string { return &s }

func TestClient_localValidation(t *testing.T) {
	srv, c := setup(t)

	tests := []struct {
		name     string
		call     func() (client.Envelope, error)
		wantMsgs []string
	}{
		{
			name: "auth token without email",
			call: func() (client.Envelope, error) {
				res, err := c.CreateAuthToken(ctx, models.NewAuthToken{Password: "pwd"})
				return res.Envelope, err
			},
			wantMsgs: []string{"The email is required."},
		},
		{
			name: "teacher without anything",
			call: func() (client.Envelope, error) {
				res, err := c.CreateTeacher(ctx, models.NewTeacher{Name: "  "})
				return res.Envelope, err
			},
			wantMsgs: []string{"The name is required.", "The email is required.", "The password is required."},
		},
		{
			name: "student without name",
			call: func() (client.Envelope, error) {
				res, err := c.CreateStudent(ctx, models.NewStudent{TeacherID: 1})
				return res.Envelope, err
			},
			wantMsgs: []string{"The student name is required."},
		},
		{
			name: "students without teacher",
			call: func() (client.Envelope, error) {
				res, err := c.GetStudents(ctx, 0)
				return res.Envelope, err
			},
			wantMsgs: []string{"The teacher id is required."},
		},
		{
			name: "reward without name",
			call: func() (client.Envelope, error) {
				res, err := c.CreateReward(ctx, models.NewReward{StudentID: 1})
				return res.Envelope, err
			},
			wantMsgs: []string{"The reward name is required."},
		},
		{
			name: "password reset without email",
			call: func() (client.Envelope, error) {
				res, err := c.CreatePasswordResetToken(ctx, " ")
				return res.Envelope, err
			},
			wantMsgs: []string{"The email is required."},
		},
		{
			name: "reset without token",
			call: func() (client.Envelope, error) {
				res, err := c.ResetPassword(ctx, models.PasswordReset{Password: "pwd"})
				return res.Envelope, err
			},
			wantMsgs: []string{"The token is required."},
		},
		{
			name: "problems without sheet",
			call: func() (client.Envelope, error) {
				res, err := c.CreateProblems(ctx, models.NewProblems{StudentID: 1})
				return res.Envelope, err
			},
			wantMsgs: []string{"The sheet id is required."},
		},
		{
			name: "powerup without powerup",
			call: func() (client.Envelope, error) {
				res, err := c.UsePowerup(ctx, 1, 0)
				return res.Envelope, err
			},
			wantMsgs: []string{"The powerup id is required."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := tt.call()
			assert.True(t, client.IsKind(err, client.KindValidation))
			assert.Equal(t, tt.wantMsgs[0], env.Error)
			assert.Equal(t, tt.wantMsgs, env.Errors)
			assert.Equal(t, tt.wantMsgs[0], client.Message(err))
		})
	}
	assert.Empty(t, srv.Requests(), "nothing reached the server")
}

func TestClient_authentication(t *testing.T) {
	srv, c := setup(t)
	sess := c.Session()

	res, err := c.CreateTeacher(ctx, models.NewTeacher{Name: "Ms Frizzle", Email: " Frizzle@Test.cd", Password: "magicbus"})
	require.NoError(t, err)
	require.NotNil(t, res.Data.Teacher)
	teacher := *res.Data.Teacher
	assert.Equal(t, "frizzle@test.cd", teacher.Email)
	assert.Equal(t, res.Data.Token, sess.Token())
	assert.Equal(t, session.Principal{Kind: session.KindTeacher, ID: teacher.ID, Name: "Ms Frizzle"}, sess.Principal())

	t.Run("duplicate email", func(t *testing.T) {
		_, err := c.CreateTeacher(ctx, models.NewTeacher{Name: "Frizzle 2", Email: "frizzle@test.cd", Password: "x"})
		assert.True(t, client.IsKind(err, client.KindApplication))
		assert.Equal(t, "Email has already been taken", client.Message(err))
	})

	t.Run("sign out", func(t *testing.T) {
		token := sess.Token()
		_, err := c.DeleteAuthTokens(ctx)
		require.NoError(t, err)
		assert.False(t, sess.IsAuthenticated())

		// the revoked token no longer works
		other := testutil.NewClient(t, srv.URL)
		require.NoError(t, other.Session().SignIn(token, session.Principal{Kind: session.KindTeacher, ID: teacher.ID}))
		_, err = other.GetStudents(ctx, teacher.ID)
		assert.Equal(t, "Not authenticated", client.Message(err))
	})

	t.Run("sign out clears the session even when the server fails", func(t *testing.T) {
		testutil.SignIn(t, c, "frizzle@test.cd", "magicbus")
		srv.Fail(http.MethodDelete, client.URIFor(client.AuthTokens, nil, nil), "Service unavailable")
		defer srv.Recover(http.MethodDelete, client.URIFor(client.AuthTokens, nil, nil))

		_, err := c.DeleteAuthTokens(ctx)
		assert.Equal(t, "Service unavailable", client.Message(err))
		assert.False(t, sess.IsAuthenticated())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.CreateAuthToken(ctx, models.NewAuthToken{Email: "frizzle@test.cd", Password: "nope"})
		assert.Equal(t, "Invalid email or password", client.Message(err))
		assert.False(t, sess.IsAuthenticated())
	})

	t.Run("unauthenticated calls", func(t *testing.T) {
		_, err := c.GetStudents(ctx, teacher.ID)
		assert.True(t, client.IsKind(err, client.KindApplication))
		assert.Equal(t, "Not authenticated", client.Message(err))
	})

	t.Run("password reset", func(t *testing.T) {
		res, err := c.CreatePasswordResetToken(ctx, "frizzle@test.cd")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Data.Message)

		token := srv.LastResetToken()
		require.NotEmpty(t, token)
		_, err = c.ResetPassword(ctx, models.PasswordReset{Token: token, Password: "schoolbus"})
		require.NoError(t, err)

		_, err = c.ResetPassword(ctx, models.PasswordReset{Token: token, Password: "again"})
		assert.Equal(t, "Invalid or expired reset token", client.Message(err))

		testutil.SignIn(t, c, "frizzle@test.cd", "schoolbus")
		assert.True(t, sess.IsAuthenticated())
	})

	t.Run("update teacher", func(t *testing.T) {
		res, err := c.UpdateTeacher(ctx, teacher.ID, models.TeacherUpdate{Name: "Valerie Frizzle"})
		require.NoError(t, err)
		assert.Equal(t, "Valerie Frizzle", res.Data.Name)
		assert.Equal(t, "frizzle@test.cd", res.Data.Email)
	})
}

func TestClient_students(t *testing.T) {
	srv, c := setup(t)
	srv.AddTeacher("Ms Frizzle", "frizzle@test.cd", "magicbus")
	teacher := testutil.SignIn(t, c, "frizzle@test.cd", "magicbus")
	students := testutil.AddStudents(t, c, "Ann", "Bo")

	list, err := c.GetStudents(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, students, list.Data)
	assert.Equal(t, &teacher, list.Meta.Teacher)
	assert.Equal(t, 2, list.Meta.Total)

	one, err := c.GetStudent(ctx, students[0].ID)
	require.NoError(t, err)
	assert.Equal(t, students[0], one.Data)
	assert.Equal(t, "fox", one.Data.Password)

	upd, err := c.UpdateStudent(ctx, students[1].ID, models.StudentUpdate{Name: strPtr("Bobby"), Password: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", upd.Data.Name)
	assert.Equal(t, "X", upd.Data.Password)

	used, err := c.UsePowerup(ctx, students[0].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, used.Data.Powerups[0].Cnt)
	_, err = c.UsePowerup(ctx, students[0].ID, 1)
	assert.Equal(t, "No powerups left", client.Message(err))

	pw, err := c.UpdatePowerup(ctx, models.PowerupUpdate{PowerupID: 1, StudentID: students[0].ID, Cnt: 3})
	require.NoError(t, err)
	assert.Equal(t, models.Powerup{ID: 1, Name: "skip", Cnt: 3}, pw.Data)

	del, err := c.DeleteStudent(ctx, students[0].ID)
	require.NoError(t, err)
	assert.Equal(t, students[0].ID, del.Data.ID)

	_, err = c.GetStudent(ctx, students[0].ID)
	assert.Equal(t, "Not found", client.Message(err))

	list, err = c.GetStudents(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Bobby", list.Data[0].Name)
}

func TestClient_workbook(t *testing.T) {
	srv, c := setup(t)
	srv.AddTeacher("Ms Frizzle", "frizzle@test.cd", "magicbus")
	testutil.SignIn(t, c, "frizzle@test.cd", "magicbus")
	ann := testutil.AddStudents(t, c, "Ann")[0]

	sample, err := c.CreateSampleProblem(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Addition", sample.Data.Type)
	assert.NotEmpty(t, sample.Data.Question)

	problems, err := c.CreateProblems(ctx, models.NewProblems{StudentID: ann.ID, SheetID: 1})
	require.NoError(t, err)
	require.Len(t, problems.Data, 3)

	first := problems.Data[0]
	first.Guess = "wrong"
	res, err := c.UpdateProblem(ctx, first)
	require.NoError(t, err)
	assert.False(t, res.Data.IsSolved)

	first.Guess = first.Answer
	res, err = c.UpdateProblem(ctx, first)
	require.NoError(t, err)
	assert.True(t, res.Data.IsSolved)

	report, err := c.GetReport(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.SheetSummary{{SheetID: 1, NumProblems: 3, NumSolved: 1}}, report.Data.Sheets)
	assert.Equal(t, 0, report.Data.LastSheet)

	skills, err := c.GetSkills(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, skills.Data)
	assert.Equal(t, "Addition", skills.Data[0].ID)

	rwd, err := c.CreateReward(ctx, models.NewReward{StudentID: ann.ID, SheetID: 1, Name: " Gold star "})
	require.NoError(t, err)
	assert.Equal(t, "Gold star", rwd.Data.Name)

	rewards, err := c.GetRewards(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Reward{rwd.Data}, rewards.Data)

	_, err = c.DeleteReward(ctx, rwd.Data.ID)
	require.NoError(t, err)
	rewards, err = c.GetRewards(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, rewards.Data)
}

func TestClient_tokenReadAtCallTime(t *testing.T) {
	srv, c := setup(t)
	teacher := srv.AddTeacher("Ms Frizzle", "frizzle@test.cd", "magicbus")

	_, err := c.GetStudents(ctx, teacher.ID)
	assert.Equal(t, "Not authenticated", client.Message(err))

	require.NoError(t, c.Session().SignIn(srv.Token(teacher.ID), session.Principal{Kind: session.KindTeacher, ID: teacher.ID}))
	_, err = c.GetStudents(ctx, teacher.ID)
	assert.NoError(t, err)

	require.NoError(t, c.Session().Clear())
	_, err = c.GetStudents(ctx, teacher.ID)
	assert.Equal(t, "Not authenticated", client.Message(err))
}

func TestNew_missingDependencies(t *testing.T) {
	assert.Panics(t, func() { client.New(nil, nil, nil, nil) })
}
