package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/atinyakov/pwdvault/internal/client"
)

// app carries the global flags and the side effects commands depend on.
type app struct {
	baseURL  string
	certFile string
	keyFile  string
	caFile   string

	newAPI       func(a *app) (*client.API, error)
	readPassword func(prompt string) (string, error)
	copyText     func(string) error
}

func defaultAPI(a *app) (*client.API, error) {
	hc, err := client.NewMTLS(a.certFile, a.keyFile, a.caFile)
	if err != nil {
		return nil, err
	}
	return client.NewAPI(a.baseURL, hc), nil
}

// NewRootCmd builds the client command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		newAPI:       defaultAPI,
		readPassword: client.ReadPassword,
		copyText:     clipboard.WriteAll,
	})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "client",
		Short:         "Store and look up passwords by hint on a pwdvault server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.baseURL, "url", "https://localhost:8080", "server base URL")
	root.PersistentFlags().StringVar(&a.certFile, "cert", "client.crt", "path to client cert")
	root.PersistentFlags().StringVar(&a.keyFile, "key", "client.key", "path to client key")
	root.PersistentFlags().StringVar(&a.caFile, "ca", "certs/ca.crt", "path to CA cert")

	root.AddCommand(
		a.registerCmd(),
		a.addCmd(),
		a.getCmd(),
		a.rmCmd(),
		a.listCmd(),
		a.statsCmd(),
		a.pruneCmd(),
		a.dumpCmd(),
		a.shellCmd(),
		versionCmd(),
	)
	return root
}

// withAPI adapts a command body needing an API client to cobra's RunE.
func (a *app) withAPI(run func(ctx context.Context, api *client.API, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		api, err := a.newAPI(a)
		if err != nil {
			return err
		}
		return run(cmd.Context(), api, cmd, args)
	}
}

func (a *app) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <login>",
		Short: "Register a login and save its client certificate",
		Long: `Register asks the server for a new vault slot. The returned client
certificate and key are written to the --cert and --key paths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := client.Register(cmd.Context(), a.baseURL, args[0], a.caFile, a.certFile, a.keyFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s as user %d; certificate saved to %s\n", args[0], reg.UID, a.certFile)
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <hint> [password]",
		Short: "Store a password under a hint",
		Long:  `Add stores a password under a hint. The password is prompted for when omitted.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, args []string) error {
			password, err := a.passwordArg(args)
			if err != nil {
				return err
			}
			if err := api.AddPair(ctx, args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored password under %q\n", args[0])
			return nil
		}),
	}
}

func (a *app) passwordArg(args []string) (string, error) {
	if len(args) > 1 {
		return args[1], nil
	}
	return a.readPassword("Password: ")
}

func (a *app) getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <hint>",
		Short: "Show the passwords stored under a hint",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, args []string) error {
			copyLast, _ := cmd.Flags().GetBool("copy")
			pw, err := api.Passwords(ctx, args[0])
			if err != nil {
				return err
			}
			if len(pw) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no passwords under %q\n", args[0])
				return nil
			}
			if copyLast {
				if err := a.copyText(pw[len(pw)-1]); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "latest password copied to clipboard")
				return nil
			}
			for _, p := range pw {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		}),
	}
	cmd.Flags().Bool("copy", false, "copy the latest password to the clipboard instead of printing")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <hint> [password]",
		Short: "Remove one password from a hint",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, args []string) error {
			password, err := a.passwordArg(args)
			if err != nil {
				return err
			}
			found, err := api.RemovePair(ctx, args[0], password)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no such password under %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return nil
		}),
	}
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every stored pair",
		Long: `List walks every stored pair through a session, grouped by hint in
first-insertion order. --reverse prints the same walk back to front.`,
		Args: cobra.NoArgs,
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, _ []string) error {
			reverse, _ := cmd.Flags().GetBool("reverse")
			return list(ctx, api, cmd.OutOrStdout(), reverse)
		}),
	}
	cmd.Flags().Bool("reverse", false, "list back to front")
	return cmd
}

func list(ctx context.Context, api *client.API, out io.Writer, reverse bool) error {
	recs, err := api.Records(ctx)
	if err != nil {
		return err
	}
	if reverse {
		slices.Reverse(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "vault is empty")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HINT\tPASSWORD")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\n", r.Hint, r.Password)
	}
	return w.Flush()
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show hint and entry counts",
		Args:  cobra.NoArgs,
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, _ []string) error {
			return stats(ctx, api, cmd.OutOrStdout())
		}),
	}
}

func stats(ctx context.Context, api *client.API, out io.Writer) error {
	st, err := api.Stats(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "user\t%d\n", st.UID)
	fmt.Fprintf(w, "hints\t%d (%d free)\n", st.Hints, st.RemainingHints)
	fmt.Fprintf(w, "entries\t%d\n", st.Entries)
	fmt.Fprintf(w, "vault\t%d users, %d hints, %d entries\n", st.VaultUsers, st.VaultHints, st.VaultEntries)
	return w.Flush()
}

func (a *app) pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete every other stored pair",
		Long: `Prune reads all pairs through a session, then seeks to and deletes the
first, third, fifth and so on.`,
		Args: cobra.NoArgs,
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, _ []string) error {
			deleted, err := api.Prune(ctx)
			for _, r := range deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", r.Hint, r.Password)
			}
			return err
		}),
	}
}

func (a *app) dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the whole vault (server diagnostics mode only)",
		Args:  cobra.NoArgs,
		RunE: a.withAPI(func(ctx context.Context, api *client.API, cmd *cobra.Command, _ []string) error {
			dir := "forward"
			if reverse, _ := cmd.Flags().GetBool("reverse"); reverse {
				dir = "reverse"
			}
			text, err := api.Dump(ctx, dir)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		}),
	}
	cmd.Flags().Bool("reverse", false, "users and entries back to front")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build version and date",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pwdvault client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		},
	}
}
