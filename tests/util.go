package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/mathbombs/core"
	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/models"
	"github.com/trezcool/mathbombs/core/session"
	"github.com/trezcool/mathbombs/storage/tokenstore/inmem"
)

// NewClient returns a Client talking to baseURL with an in-memory session.
func NewClient(t *testing.T, baseURL string, opts ...client.TransportOption) *client.Client {
	t.Helper()
	translator := core.NewTranslator()
	opts = append([]client.TransportOption{client.WithTimeout(5 * time.Second)}, opts...)
	return client.New(
		client.NewTransport(baseURL, opts...),
		session.New(inmem.NewTokenStore()),
		core.NewValidator(translator),
		translator,
	)
}

// SignIn signs a teacher in and fails the test if it does not work.
func SignIn(t *testing.T, c *client.Client, email, pwd string) models.Teacher {
	t.Helper()
	res, err := c.CreateAuthToken(context.Background(), models.NewAuthToken{Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}
	if res.Data.Teacher == nil {
		t.Fatalf("SignIn() returned no teacher")
	}
	return *res.Data.Teacher
}

// AddStudents creates students through the API, in order.
func AddStudents(t *testing.T, c *client.Client, names ...string) []models.Student {
	t.Helper()
	students := make([]models.Student, 0, len(names))
	for _, name := range names {
		res, err := c.CreateStudent(context.Background(), models.NewStudent{Name: name})
		if err != nil {
			t.Fatalf("AddStudents(%s) failed: %v", name, err)
		}
		students = append(students, res.Data)
	}
	return students
}
