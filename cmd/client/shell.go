package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atinyakov/pwdvault/internal/client"
)

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run an interactive shell",
		Args:  cobra.NoArgs,
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, _ []string) error {
			return repl(ctx, api, cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
}

// repl runs the interactive shell loop until exit or end of input.
func repl(ctx context.Context, api *client.API, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "pwdvault> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		var err error
		switch args[0] {
		case "help":
			fmt.Fprintln(out, "Available commands: help, add <hint> <password>, get <hint>, rm <hint> <password>, list, stats, exit")
		case "add":
			if len(args) != 3 {
				fmt.Fprintln(out, "Usage: add <hint> <password>")
				continue
			}
			if err = api.AddPair(ctx, args[1], args[2]); err == nil {
				fmt.Fprintln(out, "Stored")
			}
		case "get":
			if len(args) != 2 {
				fmt.Fprintln(out, "Usage: get <hint>")
				continue
			}
			var pw []string
			if pw, err = api.Passwords(ctx, args[1]); err == nil {
				if len(pw) == 0 {
					fmt.Fprintln(out, "Hint not found")
				}
				for _, p := range pw {
					fmt.Fprintln(out, p)
				}
			}
		case "rm":
			if len(args) != 3 {
				fmt.Fprintln(out, "Usage: rm <hint> <password>")
				continue
			}
			var found bool
			if found, err = api.RemovePair(ctx, args[1], args[2]); err == nil {
				if found {
					fmt.Fprintln(out, "Removed")
				} else {
					fmt.Fprintln(out, "Password not found")
				}
			}
		case "list":
			err = list(ctx, api, out, false)
		case "stats":
			err = stats(ctx, api, out)
		case "exit":
			fmt.Fprintln(out, "Bye")
			return nil
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}
