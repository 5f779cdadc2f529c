package main

import (
	"bufio"
	"context"
	"rosterhub/client"
	"sync"
)

type repl struct {
	client  *client.Client
	printer printer
	peer    string
	mu      sync.Mutex
}

func (r *repl) run(ctx context.Context, in *bufio.Scanner) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan client.Update, 16)
	listenErr := make(chan error, 1)
	go func() { listenErr <- r.client.Listen(ctx, updates) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for in.Scan() {
			select {
			case lines <- in.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case err := <-listenErr:
			if err != nil {
				return exitRuntime, err
			}
			return exitOK, nil
		case u := <-updates:
			r.onUpdate(ctx, u)
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if quit := r.handle(ctx, line); quit {
				return exitOK, nil
			}
		}
	}
}

func (r *repl) onUpdate(ctx context.Context, u client.Update) {
	switch {
	case u.Created != nil:
		r.printer.created(*u.Created)
		// The open conversation is being read
		if u.Peer == r.current() && u.Created.From.ID == u.Peer {
			if err := r.client.MarkSeen(ctx, u.Peer); err != nil {
				r.printer.fail(err)
			}
		}
	case u.Seen != nil:
		r.printer.seen(*u.Seen)
	}
}

// handle runs one input line and reports whether the session should end.
func (r *repl) handle(ctx context.Context, line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		r.printer.fail(err)
		return false
	}
	assembler := r.client.Assembler()
	switch cmd.kind {
	case cmdQuit:
		return true
	case cmdHelp:
		r.printer.info(helpText)
	case cmdTo:
		r.setPeer(cmd.arg)
		r.printer.thread(assembler.Thread(cmd.arg))
		r.markSeen(ctx, cmd.arg)
	case cmdHistory:
		r.printer.thread(assembler.Thread(r.peerOr(cmd.arg)))
	case cmdPeers:
		r.printer.peers(assembler)
	case cmdSeen:
		r.markSeen(ctx, r.peerOr(cmd.arg))
	case cmdSearch:
		chats, err := r.client.Search(ctx, cmd.arg)
		if err != nil {
			r.printer.fail(err)
			return false
		}
		r.printer.results(chats)
	case cmdSend:
		peer := r.current()
		if peer == "" {
			r.printer.info("pick a peer first with /to <id>")
			return false
		}
		if _, err := r.client.Send(ctx, peer, cmd.arg); err != nil {
			r.printer.fail(err)
		}
	}
	return false
}

func (r *repl) markSeen(ctx context.Context, peer string) {
	if peer == "" || r.client.Assembler().Unseen(peer) == 0 {
		return
	}
	if err := r.client.MarkSeen(ctx, peer); err != nil {
		r.printer.fail(err)
	}
}

func (r *repl) peerOr(arg string) string {
	if arg != "" {
		return arg
	}
	return r.current()
}

func (r *repl) current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peer
}

func (r *repl) setPeer(peer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peer = peer
}
