package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/atinyakov/itemgate/internal/models"
)

const shellHelp = `Available commands:
  list                 show all items
  get <id>             show one item
  add <json>           create an item, e.g. add {"name":"x"}
  edit <id> <json>     replace an item
  delete <id>          delete an item
  hello <name>         call the SOAP say_hello procedure
  help, exit`

// Shell is the interactive testing front-end. It reads one command per line
// from In and prints results to Out.
type Shell struct {
	Client *Client
	In     io.Reader
	Out    io.Writer
	// Prompt is printed before every command. Empty disables it.
	Prompt string
}

// Run processes commands until exit, end of input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.In)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.Prompt != "" {
			fmt.Fprint(s.Out, s.Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := s.exec(ctx, line); quit {
			return nil
		}
	}
}

// exec runs a single command line and reports whether the shell should stop.
func (s *Shell) exec(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Fprintln(s.Out, shellHelp)
	case "list":
		items, err := s.Client.ListItems(ctx)
		if err != nil {
			s.fail(err)
			return false
		}
		if len(items) == 0 {
			fmt.Fprintln(s.Out, "No items")
			return false
		}
		ids := make([]int64, 0, len(items))
		for id := range items {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			s.printItem(id, items[id])
		}
	case "get":
		id, ok := s.parseID(rest, "get <id>")
		if !ok {
			return false
		}
		item, err := s.Client.GetItem(ctx, id)
		if err != nil {
			s.fail(err)
			return false
		}
		s.printItem(id, item)
	case "add":
		item, ok := s.parseItem(rest, "add <json>")
		if !ok {
			return false
		}
		rec, err := s.Client.CreateItem(ctx, item)
		if err != nil {
			s.fail(err)
			return false
		}
		fmt.Fprintf(s.Out, "Item %d created\n", rec.ID)
	case "edit":
		idStr, body, _ := strings.Cut(rest, " ")
		id, ok := s.parseID(idStr, "edit <id> <json>")
		if !ok {
			return false
		}
		item, ok := s.parseItem(strings.TrimSpace(body), "edit <id> <json>")
		if !ok {
			return false
		}
		if _, err := s.Client.ReplaceItem(ctx, id, item); err != nil {
			s.fail(err)
			return false
		}
		fmt.Fprintf(s.Out, "Item %d updated\n", id)
	case "delete":
		id, ok := s.parseID(rest, "delete <id>")
		if !ok {
			return false
		}
		if err := s.Client.DeleteItem(ctx, id); err != nil {
			s.fail(err)
			return false
		}
		fmt.Fprintln(s.Out, "Item deleted")
	case "hello":
		greeting, err := s.Client.SayHello(ctx, rest)
		if err != nil {
			s.fail(err)
			return false
		}
		fmt.Fprintln(s.Out, greeting)
	case "exit":
		fmt.Fprintln(s.Out, "Bye")
		return true
	default:
		fmt.Fprintln(s.Out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *Shell) parseID(arg, usage string) (int64, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintln(s.Out, "Usage:", usage)
		return 0, false
	}
	return id, true
}

func (s *Shell) parseItem(arg, usage string) (models.Item, bool) {
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()
	var item models.Item
	if err := dec.Decode(&item); err != nil || dec.More() || len(item) == 0 {
		fmt.Fprintln(s.Out, "Usage:", usage)
		return nil, false
	}
	return item, true
}

func (s *Shell) printItem(id int64, item models.Item) {
	b, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.Out, "%d: %s\n", id, b)
}

func (s *Shell) fail(err error) {
	fmt.Fprintln(s.Out, "Error:", err)
}
