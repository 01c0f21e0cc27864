package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/roster"
	"github.com/trezcool/mathbombs/core/store"
)

func (cli *commandLine) loadRoster(teacherID int) (*roster.Roster, error) {
	r := roster.New(cli.client, teacherID)
	if err := r.Load(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (cli *commandLine) studentsCmd(args []string) error {
	fs := cli.flagSet("students")
	teacherID := fs.Int("teacher", 0, "The teacher id.")
	show := fs.Bool("show-passwords", false, "Show the student passwords.")
	if err := parse(fs, args, "teacher"); err != nil {
		return err
	}

	r, err := cli.loadRoster(*teacherID)
	if err != nil {
		return err
	}
	r.SetShowPasswords(*show)
	cli.printRoster(r)
	return nil
}

func (cli *commandLine) printRoster(r *roster.Roster) {
	if t := r.Teacher(); t != nil {
		fmt.Fprintf(cli.out, "%s's students (portal: %s)\n", t.Name, r.PortalURL())
	}
	students := r.Students()
	if len(students) == 0 {
		fmt.Fprintln(cli.out, "No students yet.")
		return
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPASSWORD\tSKILL\tSHEET")
	for _, st := range students {
		pwd := "****"
		if r.ShowPasswords() {
			pwd = r.PasswordField(st.ID).Value()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", st.ID, st.Name, pwd, client.HumanizeSkill(st.MathSkill), st.NextSheet())
	}
	_ = w.Flush()
}

func (cli *commandLine) addStudentCmd(args []string) error {
	fs := cli.flagSet("add-student")
	teacherID := fs.Int("teacher", 0, "The teacher id.")
	name := fs.String("name", "", "The student's name.")
	if err := parse(fs, args, "teacher"); err != nil {
		return err
	}

	r, err := cli.loadRoster(*teacherID)
	if err != nil {
		return err
	}
	st, err := r.Add(context.Background(), *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Added %s (id %d, password %s).\n", st.Name, st.ID, st.Password)
	return nil
}

func (cli *commandLine) rmStudentCmd(args []string) error {
	fs := cli.flagSet("rm-student")
	teacherID := fs.Int("teacher", 0, "The teacher id.")
	id := fs.Int("id", 0, "The student id.")
	yes := fs.Bool("yes", false, "Do not ask for confirmation.")
	if err := parse(fs, args, "teacher", "id"); err != nil {
		return err
	}

	r, err := cli.loadRoster(*teacherID)
	if err != nil {
		return err
	}
	confirm := store.ConfirmFunc(cli.confirm)
	if *yes {
		confirm = func(string) bool { return true }
	}
	removed, err := r.Remove(context.Background(), *id, confirm)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(cli.out, "Deleted.")
	} else {
		fmt.Fprintln(cli.out, "Cancelled.")
	}
	return nil
}

func (cli *commandLine) setPasswordCmd(args []string) error {
	fs := cli.flagSet("set-password")
	teacherID := fs.Int("teacher", 0, "The teacher id.")
	id := fs.Int("id", 0, "The student id.")
	pwd := fs.String("password", "", "The new password.")
	if err := parse(fs, args, "teacher", "id", "password"); err != nil {
		return err
	}

	r, err := cli.loadRoster(*teacherID)
	if err != nil {
		return err
	}
	st, err := r.SetPassword(context.Background(), *id, *pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s's password is now %s.\n", st.Name, st.Password)
	return nil
}

func (cli *commandLine) reportCmd(args []string) error {
	fs := cli.flagSet("report")
	studentID := fs.Int("student", 0, "The student id.")
	if err := parse(fs, args, "student"); err != nil {
		return err
	}

	res, err := cli.client.GetReport(context.Background(), *studentID)
	if err != nil {
		return err
	}
	rep := res.Data
	fmt.Fprintf(cli.out, "Skill: %s, difficulty %d, last sheet %d\n", client.HumanizeSkill(rep.MathSkill), rep.Difficulty, rep.LastSheet)
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SHEET\tSOLVED\tPROBLEMS")
	for _, sh := range rep.Sheets {
		fmt.Fprintf(w, "%d\t%d\t%d\n", sh.SheetID, sh.NumSolved, sh.NumProblems)
	}
	_ = w.Flush()
	return nil
}
