package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// handler runs one command with the words that followed it.
type handler func(ctx context.Context, args []string) error

type route struct {
	handler      handler
	requiresAuth bool
	usage        string
	help         string
}

type routeTable map[string]route

// visible lists the commands usable in the current login state, sorted.
func (t routeTable) visible(loggedIn bool) []string {
	names := slices.Sorted(maps.Keys(t))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if t[n].requiresAuth && !loggedIn {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (t routeTable) printHelp(loggedIn bool) {
	printlnFn("Available commands:")
	for _, n := range t.visible(loggedIn) {
		r := t[n]
		name := n
		if r.usage != "" {
			name = r.usage
		}
		printlnFn(fmt.Sprintf("  %-28s %s", name, r.help))
	}
	printlnFn(fmt.Sprintf("  %-28s %s", "exit | quit", "leave the program"))
}

// runREPL reads commands line by line from reader and dispatches them
// through table. Commands marked requiresAuth are refused while
// loggedIn() is false. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Handler errors are printed and the loop carries on.
func runREPL(ctx context.Context, table routeTable, loggedIn func() bool, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			table.printHelp(loggedIn())
			continue
		}

		r, ok := table[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if r.requiresAuth && !loggedIn() {
			printlnFn("Please log in first (login or signup)")
			continue
		}
		if err := r.handler(ctx, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}
