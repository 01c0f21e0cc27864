package main

import (
	"context"
	"fmt"

	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/rewards"
)

func (cli *commandLine) rewardsCmd(args []string) error {
	fs := cli.flagSet("rewards")
	studentID := fs.Int("student", 0, "The student id.")
	if err := parse(fs, args, "student"); err != nil {
		return err
	}

	r := rewards.New(cli.client, *studentID)
	if err := r.Load(context.Background()); err != nil {
		return err
	}
	items := r.Items()
	if len(items) == 0 {
		fmt.Fprintln(cli.out, "No rewards yet.")
		return nil
	}
	for _, rwd := range items {
		if rwd.SheetID != 0 {
			fmt.Fprintf(cli.out, "%d. %s (sheet %d)\n", rwd.ID, rwd.Name, rwd.SheetID)
		} else {
			fmt.Fprintf(cli.out, "%d. %s\n", rwd.ID, rwd.Name)
		}
	}
	return nil
}

func (cli *commandLine) giveRewardCmd(args []string) error {
	fs := cli.flagSet("give-reward")
	studentID := fs.Int("student", 0, "The student id.")
	name := fs.String("name", "", "The reward.")
	sheet := fs.Int("sheet", 0, "The sheet the reward is for.")
	if err := parse(fs, args, "student"); err != nil {
		return err
	}

	r := rewards.New(cli.client, *studentID)
	rwd, err := r.Give(context.Background(), *name, *sheet)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Rewarded %q (id %d).\n", rwd.Name, rwd.ID)
	return nil
}

func (cli *commandLine) skills() error {
	res, err := cli.client.GetSkills(context.Background())
	if err != nil {
		return err
	}
	for _, sk := range res.Data {
		fmt.Fprintln(cli.out, client.HumanizeSkill(sk.Name))
	}
	return nil
}
