package main

import (
	"context"
	"fmt"

	"github.com/trezcool/mathbombs/core/portal"
)

func (cli *commandLine) portalCmd(args []string) error {
	fs := cli.flagSet("portal")
	teacherID := fs.Int("teacher", 0, "The teacher id.")
	name := fs.String("student", "", "Your name. Your password will be prompted next.")
	if err := parse(fs, args, "teacher", "student"); err != nil {
		return err
	}

	p := portal.New(cli.client, cli.client.Session(), *teacherID)
	if err := p.Load(context.Background()); err != nil {
		return err
	}
	if t := p.Teacher(); t != nil {
		fmt.Fprintf(cli.out, "Welcome to %s's class!\n", t.Name)
	}
	st, found := p.FindByName(*name)
	if !found {
		return portal.ErrInvalidPassword
	}

	target, err := p.SignIn(st.ID, portal.PromptFunc(func(msg string) (string, bool) {
		pwd, err := cli.readPassword(msg + " ")
		return pwd, err == nil
	}))
	if err != nil {
		return err
	}
	if target == "" {
		fmt.Fprintln(cli.out, "Cancelled.")
		return nil
	}
	fmt.Fprintf(cli.out, "Hi %s! Continue at %s\n", st.Name, target)
	return nil
}
