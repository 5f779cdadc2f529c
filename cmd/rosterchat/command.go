package main

import (
	"fmt"
	"strings"
)

type commandKind int

const (
	cmdSend commandKind = iota
	cmdTo
	cmdHistory
	cmdPeers
	cmdSearch
	cmdSeen
	cmdHelp
	cmdQuit
)

type command struct {
	kind commandKind
	arg  string
}

// parseCommand reads one input line. Anything not starting with '/' is sent
// to the current peer.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}, fmt.Errorf("empty input")
	}
	if !strings.HasPrefix(line, "/") {
		return command{kind: cmdSend, arg: line}, nil
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "to":
		if arg == "" {
			return command{}, fmt.Errorf("usage: /to <profile-id>")
		}
		return command{kind: cmdTo, arg: arg}, nil
	case "history", "h":
		return command{kind: cmdHistory, arg: arg}, nil
	case "peers":
		return command{kind: cmdPeers}, nil
	case "search", "s":
		if arg == "" {
			return command{}, fmt.Errorf("usage: /search <terms>")
		}
		return command{kind: cmdSearch, arg: arg}, nil
	case "seen":
		return command{kind: cmdSeen, arg: arg}, nil
	case "help", "?":
		return command{kind: cmdHelp}, nil
	case "quit", "q", "exit":
		return command{kind: cmdQuit}, nil
	default:
		return command{}, fmt.Errorf("unknown command /%s, try /help", name)
	}
}

const helpText = `/to <id>        pick the conversation peer
/history [id]   show a thread, the current peer by default
/peers          list conversations, latest first
/search <terms> full-text search in the organization
/seen [id]      mark the peer's messages as seen
/quit           leave
anything else is sent to the current peer`
