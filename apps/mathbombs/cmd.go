package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/trezcool/mathbombs/core"
	"github.com/trezcool/mathbombs/core/client"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	client *client.Client
	logger core.Logger
	in     *bufio.Reader
	out    io.Writer
}

func newCommandLine(c *client.Client, logger core.Logger) *commandLine {
	return &commandLine{
		client: c,
		logger: logger,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// exec runs the command and returns the exit code. Failures are reported through the logger
// along with the acting principal: rejected input as info, server answers as warnings and
// everything else as errors.
func (cli *commandLine) exec(args []string) int {
	err := cli.run(args)
	if err == nil {
		return 0
	}
	if err == errHelp {
		return 2
	}

	cmd := "mathbombs"
	if len(args) > 1 {
		cmd += " " + args[1]
	}
	msg := cmd + ": " + client.Message(err)
	who := cli.client.Session().Principal()
	switch {
	case client.IsKind(err, client.KindValidation):
		cli.logger.Info(msg, who)
	case client.IsKind(err, client.KindApplication):
		cli.logger.Warn(msg, who)
	default:
		cli.logger.Error(msg, err, who)
	}
	return 1
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  signup -name NAME -email EMAIL                  - create a teacher account")
	fmt.Fprintln(cli.out, "  login -email EMAIL                              - sign in as a teacher")
	fmt.Fprintln(cli.out, "  logout                                          - sign out")
	fmt.Fprintln(cli.out, "  forgot-password -email EMAIL                    - request a password reset")
	fmt.Fprintln(cli.out, "  reset-password -token TOKEN                     - set a new password")
	fmt.Fprintln(cli.out, "  students -teacher ID [-show-passwords]          - list the students of a teacher")
	fmt.Fprintln(cli.out, "  add-student -teacher ID -name NAME              - add a student")
	fmt.Fprintln(cli.out, "  rm-student -teacher ID -id ID [-yes]            - delete a student")
	fmt.Fprintln(cli.out, "  set-password -teacher ID -id ID -password PWD   - change a student's password")
	fmt.Fprintln(cli.out, "  report -student ID                              - show a student's progress")
	fmt.Fprintln(cli.out, "  rewards -student ID                             - list a student's rewards")
	fmt.Fprintln(cli.out, "  give-reward -student ID -name NAME [-sheet N]   - reward a student")
	fmt.Fprintln(cli.out, "  skills                                          - list the math skills")
	fmt.Fprintln(cli.out, "  portal -teacher ID -student NAME                - sign in as a student")
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "signup":
		return cli.signupCmd(rest)
	case "login":
		return cli.loginCmd(rest)
	case "logout":
		return cli.logout()
	case "forgot-password":
		return cli.forgotPasswordCmd(rest)
	case "reset-password":
		return cli.resetPasswordCmd(rest)
	case "students":
		return cli.studentsCmd(rest)
	case "add-student":
		return cli.addStudentCmd(rest)
	case "rm-student":
		return cli.rmStudentCmd(rest)
	case "set-password":
		return cli.setPasswordCmd(rest)
	case "report":
		return cli.reportCmd(rest)
	case "rewards":
		return cli.rewardsCmd(rest)
	case "give-reward":
		return cli.giveRewardCmd(rest)
	case "skills":
		return cli.skills()
	case "portal":
		return cli.portalCmd(rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// parse parses args and returns errHelp when a required flag is missing.
func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	for _, name := range required {
		f := fs.Lookup(name)
		if f == nil || f.Value.String() == "" || f.Value.String() == "0" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

// readPassword prompts for a password without echoing it.
func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// confirm asks a yes/no question on the CLI input; anything but y/yes is a no.
func (cli *commandLine) confirm(prompt string) bool {
	fmt.Fprintf(cli.out, "%s [y/N] ", prompt)
	answer, err := cli.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
