package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"rosterhub/client"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
	flag "github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rosterchat: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	email := flag.StringP("email", "e", "", "Account email")
	password := flag.StringP("password", "p", "", "Account password")
	name := flag.StringP("name", "n", "", "Display name, required with --register")
	register := flag.Bool("register", false, "Create the account before logging in")
	peer := flag.String("to", "", "Initial conversation peer")
	flag.Parse()

	cfg, err := LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	if *email == "" || *password == "" {
		return exitConfig, errors.New("--email and --password are required")
	}
	if *register && *name == "" {
		return exitConfig, errors.New("--name is required with --register")
	}

	log := logs.GetLoggerFromString(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(log, client.Config{BaseURL: cfg.BaseURL, OrganizationID: cfg.OrganizationID, Timeout: cfg.Timeout})
	var session client.Session
	if *register {
		session, err = c.Register(ctx, *name, *email, *password)
	} else {
		session, err = c.Login(ctx, *email, *password)
	}
	if err != nil {
		return exitRuntime, err
	}

	// Subscribed before the history fetch, the assembler drops duplicates.
	if err := c.Subscribe(ctx); err != nil {
		return exitRuntime, err
	}
	defer func() { _ = c.Close() }()
	if err := c.FetchHistory(ctx); err != nil {
		return exitRuntime, err
	}

	p := printer{out: os.Stdout, colours: cfg.Colours, loc: time.Local}
	p.info("logged in as %s (%s) in %s, /help for commands", session.Name, session.ProfileID, cfg.OrganizationID)

	r := &repl{client: c, printer: p, peer: *peer}
	return r.run(ctx, bufio.NewScanner(os.Stdin))
}
