// Command resumectl is a terminal client for the Smart Resume Matcher API.
// It keeps a login session on disk (or in redis) and sends authenticated
// requests, refreshing the access token when the server asks for it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/resume-matcher-client/internal/config"
	"github.com/jrsteele09/resume-matcher-client/internal/logging"
)

const usage = `usage: resumectl [-config file] [-metrics] <command> [flags]

commands:
  login    [-email e] [-password p] [-next path]   log in and store the session
  logout                                          end the session
  whoami                                          show the cached user
  verify                                          ask the server whether the session is valid
  refresh                                         trade the refresh token for a new access token
  fetch    [-X method] [-d json] path|url         send an authenticated request
  status                                          show session and theme state
  theme    [light|dark|toggle]                    show or change the theme preference
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "resumectl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("resumectl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "path to a YAML config file")
	showMetrics := global.Bool("metrics", false, "print client counters after the command")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.GetEnv(), stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, stdin, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	cmdErr := a.dispatch(ctx, global.Arg(0), global.Args()[1:])
	if *showMetrics {
		a.printMetrics()
	}
	return cmdErr
}
