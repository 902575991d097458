package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-session/client"
	"github.com/spf13/cobra"
)

const shellHelp = `commands:
  goto <path>   navigate, e.g. "goto /" or "goto login"
  user <name>   type into the username field
  pass <text>   type into the password field
  login         submit the login form
  logout        log out
  check         ask the server again
  show          print the current page
  quit          leave the shell
`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Drive the client session interactively",
	Long: `Starts a client session against the server and reads commands from stdin.
The current page is printed after every command once outstanding requests
have finished.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	tr, err := newTransport(logger)
	if err != nil {
		return err
	}
	defer tr.CloseIdleConnections()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := client.New(tr, serverURL, strings.TrimSuffix(serverURL, "/")+"/", client.WithLogger(logger))
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	sh := &shell{machine: m, out: cmd.OutOrStdout(), wait: requestTimeout + time.Second}
	// The loop issues its own startup check; wait for it to resolve.
	sh.waitUntil(ctx, func() bool {
		_, pending := m.Snapshot().Status.(client.Pending)
		return !pending && m.Idle()
	})
	sh.show()
	err = sh.loop(ctx, cmd.InOrStdin())

	cancel()
	if runErr := <-done; runErr != nil && err == nil {
		err = runErr
	}
	return err
}

type shell struct {
	machine *client.Machine
	out     io.Writer
	wait    time.Duration
}

func (s *shell) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		verb, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		switch verb {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprint(s.out, shellHelp)
			continue
		case "show":
		case "goto":
			s.machine.Dispatch(client.URLChanged{URL: s.resolve(arg)})
		case "user":
			s.machine.Dispatch(client.EditUsername{Text: arg})
		case "pass":
			s.machine.Dispatch(client.EditPassword{Text: arg})
		case "login":
			s.machine.Dispatch(client.SubmitLogin{})
		case "logout":
			s.machine.Dispatch(client.SubmitLogout{})
		case "check":
			s.machine.Dispatch(client.CheckAuth{})
		default:
			fmt.Fprintf(s.out, "unknown command %q, try help\n", verb)
			continue
		}

		s.waitUntil(ctx, s.machine.Idle)
		s.show()
	}
}

func (s *shell) resolve(path string) string {
	base := strings.TrimSuffix(s.machine.Snapshot().BaseURL, "/")
	return base + "/" + strings.TrimPrefix(path, "/")
}

// waitUntil polls done until it holds or s.wait has passed.
func (s *shell) waitUntil(ctx context.Context, done func() bool) {
	deadline := time.NewTimer(s.wait)
	defer deadline.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for !done() {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}

func (s *shell) show() {
	snap := s.machine.Snapshot()
	view, err := client.View(snap)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "[%s]\n%s", snap.URL, view)
}
