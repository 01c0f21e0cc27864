package portal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/session"
	"github.com/trezcool/mathbombs/tests"
	"github.com/trezcool/mathbombs/tests/fakeapi"
)

func answer(pwd string) Prompter {
	return PromptFunc(func(msg string) (string, bool) { return pwd, true })
}

func TestGate_Verify(t *testing.T) {
	fox := models.Student{ID: 3, Name: "Ann", Password: "fox", LastSheet: 4}

	tests := []struct {
		name       string
		candidate  string
		wantTarget string
		wantErr    error
		wantState  State
	}{
		{name: "match", candidate: "fox", wantTarget: "/students/3/sheets/5", wantState: Authenticated},
		{name: "case matters", candidate: "Fox", wantErr: ErrInvalidPassword, wantState: Unauthenticated},
		{name: "empty", candidate: "", wantErr: ErrInvalidPassword, wantState: Unauthenticated},
		{name: "prefix", candidate: "fo", wantErr: ErrInvalidPassword, wantState: Unauthenticated},
		{name: "trailing space", candidate: "fox ", wantErr: ErrInvalidPassword, wantState: Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New(nil)
			require.NoError(t, sess.SignIn("tok", session.Principal{Kind: session.KindTeacher, ID: 1}))
			g := NewGate(sess)

			target, err := g.Verify(fox, tt.candidate)
			if err != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantTarget, target)
			assert.Equal(t, tt.wantState, g.State())

			if tt.wantErr != nil {
				assert.Equal(t, "invalid password", g.Notice())
				assert.Nil(t, g.Student())
				assert.Equal(t, session.KindTeacher, sess.Principal().Kind, "no student session")
			} else {
				assert.Empty(t, g.Notice())
				assert.Equal(t, &fox, g.Student())
				assert.Equal(t, tt.wantTarget, g.Target())
				assert.Equal(t, session.Principal{Kind: session.KindStudent, ID: 3, Name: "Ann"}, sess.Principal())
			}
		})
	}
}

func TestGate_Verify_afterSignIn(t *testing.T) {
	ann := models.Student{ID: 1, Name: "Ann", Password: "fox", LastSheet: 2}
	bo := models.Student{ID: 2, Name: "Bo", Password: "owl"}
	teacher := session.Principal{Kind: session.KindTeacher, ID: 9, Name: "Ms Frizzle"}

	tests := []struct {
		name      string
		student   models.Student
		candidate string
	}{
		{name: "second student, wrong password", student: bo, candidate: "wrong"},
		{name: "second student, first student's password", student: bo, candidate: "fox"},
		{name: "same student, wrong password", student: ann, candidate: "Fox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New(nil)
			require.NoError(t, sess.SignIn("tok", teacher))
			g := NewGate(sess)
			_, err := g.Verify(ann, "fox")
			require.NoError(t, err)

			target, err := g.Verify(tt.student, tt.candidate)
			assert.Equal(t, ErrInvalidPassword, err)
			assert.Empty(t, target)
			assert.Equal(t, Unauthenticated, g.State())
			assert.Nil(t, g.Student())
			assert.Empty(t, g.Target())
			assert.Equal(t, "invalid password", g.Notice())
			assert.Equal(t, teacher, sess.Principal())
			assert.Equal(t, "tok", sess.Token())
		})
	}

	t.Run("switching students keeps the first principal", func(t *testing.T) {
		sess := session.New(nil)
		require.NoError(t, sess.SignIn("tok", teacher))
		g := NewGate(sess)
		_, err := g.Verify(ann, "fox")
		require.NoError(t, err)
		_, err = g.Verify(bo, "owl")
		require.NoError(t, err)
		assert.Equal(t, session.Principal{Kind: session.KindStudent, ID: 2, Name: "Bo"}, sess.Principal())

		_, err = g.Verify(ann, "")
		assert.Equal(t, ErrInvalidPassword, err)
		assert.Equal(t, teacher, sess.Principal())
	})
}

func TestGate_emptyStoredPassword(t *testing.T) {
	g := NewGate(session.New(nil))
	_, err := g.Verify(models.Student{ID: 1}, "")
	assert.Equal(t, ErrInvalidPassword, err)
	assert.Equal(t, Unauthenticated, g.State())
}

func TestGate_Challenge(t *testing.T) {
	st := models.Student{ID: 3, Name: "Ann", Password: "fox"}

	t.Run("cancelled", func(t *testing.T) {
		g := NewGate(session.New(nil))
		var asked string
		target, err := g.Challenge(st, PromptFunc(func(msg string) (string, bool) {
			asked = msg
			return "", false
		}))
		assert.NoError(t, err)
		assert.Empty(t, target)
		assert.Equal(t, "What is your password?", asked)
		assert.Equal(t, Unauthenticated, g.State())
		assert.Empty(t, g.Notice())
	})

	t.Run("wrong then right", func(t *testing.T) {
		g := NewGate(session.New(nil))
		_, err := g.Challenge(st, answer("cat"))
		assert.Equal(t, ErrInvalidPassword, err)
		assert.Equal(t, "invalid password", g.Notice())
		g.DismissNotice()
		assert.Empty(t, g.Notice())

		target, err := g.Challenge(st, answer("fox"))
		require.NoError(t, err)
		assert.Equal(t, "/students/3/sheets/1", target)
		assert.Equal(t, "authenticated", g.State().String())
	})

	t.Run("nil session", func(t *testing.T) {
		assert.Panics(t, func() { NewGate(nil) })
	})
}

func TestPortal_SignIn(t *testing.T) {
	ctx := context.Background()
	srv := fakeapi.New()
	defer srv.Close()

	teacher := srv.AddTeacher("Ms Frizzle", "frizzle@test.cd", "magicbus")
	ann := srv.AddStudent(teacher.ID, "Ann")
	bo := srv.AddStudent(teacher.ID, "Bo")
	c := testutil.NewClient(t, srv.URL)
	testutil.SignIn(t, c, "frizzle@test.cd", "magicbus")

	// Bo completes sheet 1
	res, err := c.CreateProblems(ctx, models.NewProblems{StudentID: bo.ID, SheetID: 1})
	require.NoError(t, err)
	for _, p := range res.Data {
		p.Guess = p.Answer
		_, err = c.UpdateProblem(ctx, p)
		require.NoError(t, err)
	}

	p := New(c, c.Session(), teacher.ID)
	require.NoError(t, p.Load(ctx))
	require.NotNil(t, p.Teacher())
	assert.Equal(t, "Ms Frizzle", p.Teacher().Name)
	assert.Len(t, p.Students(), 2)

	st, found := p.FindByName("Bo")
	require.True(t, found)
	_, found = p.FindByName("Nobody")
	assert.False(t, found)

	_, err = p.SignIn(st.ID, answer("fox"))
	assert.Equal(t, ErrInvalidPassword, err, "Ann's password does not open Bo's workbook")

	target, err := p.SignIn(st.ID, answer(bo.Password))
	require.NoError(t, err)
	assert.Equal(t, SheetURL(bo.ID, 2), target)
	assert.Equal(t, session.KindStudent, c.Session().Principal().Kind)
	assert.True(t, c.Session().IsAuthenticated())

	t.Run("unknown student", func(t *testing.T) {
		p.Gate().DismissNotice()
		_, err := p.SignIn(999, answer(ann.Password))
		assert.Equal(t, ErrInvalidPassword, err)
		assert.Equal(t, "invalid password", p.Gate().Notice())
		assert.Empty(t, p.ErrorMessage())
		assert.Equal(t, Unauthenticated, p.Gate().State())
		assert.Equal(t, session.KindTeacher, c.Session().Principal().Kind, "Bo is signed out")
		assert.True(t, c.Session().IsAuthenticated(), "the credential is kept")
	})
}
