package main

import (
	"context"
	"fmt"

	"github.com/trezcool/mathbombs/core/models"
)

func (cli *commandLine) signupCmd(args []string) error {
	fs := cli.flagSet("signup")
	name := fs.String("name", "", "Your name.")
	email := fs.String("email", "", "Your email. The password will be prompted next.")
	if err := parse(fs, args, "name", "email"); err != nil {
		return err
	}
	pwd, err := cli.readPassword("Choose a password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	res, err := cli.client.CreateTeacher(context.Background(), models.NewTeacher{Name: *name, Email: *email, Password: pwd})
	if err != nil {
		return err
	}
	cli.printSignedIn(res.Data)
	return nil
}

func (cli *commandLine) loginCmd(args []string) error {
	fs := cli.flagSet("login")
	email := fs.String("email", "", "Your email. The password will be prompted next.")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}
	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}

	res, err := cli.client.CreateAuthToken(context.Background(), models.NewAuthToken{Email: *email, Password: pwd})
	if err != nil {
		return err
	}
	cli.printSignedIn(res.Data)
	return nil
}

func (cli *commandLine) printSignedIn(tok models.AuthToken) {
	if tok.Teacher == nil {
		fmt.Fprintln(cli.out, "Signed in.")
		return
	}
	fmt.Fprintf(cli.out, "Signed in as %s (teacher %d).\n", tok.Teacher.Name, tok.Teacher.ID)
	fmt.Fprintf(cli.out, "Student portal: /portals/%d\n", tok.Teacher.ID)
}

func (cli *commandLine) logout() error {
	if _, err := cli.client.DeleteAuthTokens(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out.")
	return nil
}

func (cli *commandLine) forgotPasswordCmd(args []string) error {
	fs := cli.flagSet("forgot-password")
	email := fs.String("email", "", "The email of your account.")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}

	res, err := cli.client.CreatePasswordResetToken(context.Background(), *email)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, res.Data.Message)
	return nil
}

func (cli *commandLine) resetPasswordCmd(args []string) error {
	fs := cli.flagSet("reset-password")
	token := fs.String("token", "", "The token received by email. The password will be prompted next.")
	if err := parse(fs, args, "token"); err != nil {
		return err
	}
	pwd, err := cli.readPassword("New password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	res, err := cli.client.ResetPassword(context.Background(), models.PasswordReset{Token: *token, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, res.Data.Message)
	return nil
}
