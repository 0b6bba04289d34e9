// ABOUTME: Slash command registry and dispatch for interactive mode
// ABOUTME: Commands drive the session through CommandContext callbacks: open, close, send, save, clear, toggles

package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// Command represents a slash command.
type Command struct {
	Name        string
	Usage       string
	Description string
	Execute     func(ctx *CommandContext, args string) (string, error)
}

// Status is a point-in-time view of the session for /status.
type Status struct {
	State      string
	Line       string
	Rate       int
	ID         string
	Detail     string
	OpenedAt   time.Time
	Used       int
	Limit      int
	Timestamps bool
	Newline    bool
	LineEnding string
	LastError  error
}

// MatchResult is one /match hit.
type MatchResult struct {
	Offset int
	Text   string
}

// CommandContext provides access to app state for commands.
type CommandContext struct {
	Version     string
	DefaultLine string
	DefaultRate int
	// SaveAsBytes is the configured default save mode.
	SaveAsBytes bool
	Now         func() time.Time

	// Session operations. Open, Close, Send and Save are expected to run
	// asynchronously; the session renders its own outcome messages.
	Open  func(name string, rate int)
	Close func()
	Send  func(text string)
	Save  func(path string, asBytes, dump bool)

	Clear         func()
	Match         func(pattern string) ([]MatchResult, error)
	Status        func() Status
	SetTimestamps func(bool)
	SetNewline    func(bool)
	SetLineEnding func(string) error
	Ports         func() ([]string, error)
	SavePath      func() string

	// ExitFn quits the application. Nilable.
	ExitFn func()
}

// Registry holds all registered slash commands.
type Registry struct {
	commands map[string]*Command
	names    []string
}

// NewRegistry creates a registry with all core commands registered.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]*Command)}
	r.registerCoreCommands()
	return r
}

// Get returns a command by name.
// The second return value indicates whether the name was found.
func (r *Registry) Get(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all commands sorted by name for deterministic output.
func (r *Registry) List() []*Command {
	result := make([]*Command, 0, len(r.commands))
	for _, name := range r.names {
		result = append(result, r.commands[name])
	}
	return result
}

// Dispatch parses a "/command args" input, looks up the command, and executes it.
// Returns the command output or an error if the command is not found.
func (r *Registry) Dispatch(ctx *CommandContext, input string) (string, error) {
	input = strings.TrimSpace(input)
	if !IsCommand(input) {
		return "", fmt.Errorf("not a command: %q", input)
	}

	raw := input[1:]
	parts := strings.SplitN(raw, " ", 2)
	name := parts[0]
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	cmd, ok := r.commands[name]
	if !ok {
		if guess := r.BestMatch(name); guess != "" {
			return "", fmt.Errorf("unknown command: /%s (did you mean /%s?)", name, guess)
		}
		return "", fmt.Errorf("unknown command: /%s", name)
	}
	return cmd.Execute(ctx, args)
}

// BestMatch returns the command name that best completes partial, or "" when
// nothing matches. Prefix matches win over fuzzy ones.
func (r *Registry) BestMatch(partial string) string {
	partial = strings.TrimPrefix(strings.TrimSpace(partial), "/")
	if partial == "" {
		return ""
	}
	for _, name := range r.names {
		if strings.HasPrefix(name, partial) {
			return name
		}
	}
	matches := fuzzy.Find(partial, r.names)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// IsCommand returns true if input starts with '/'.
func IsCommand(input string) bool {
	return len(input) > 0 && input[0] == '/'
}

func parseToggle(args string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", args)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// parseOpenArgs accepts "[name] [rate]" in either order.
func parseOpenArgs(args string, defName string, defRate int) (string, int, error) {
	name, rate := defName, defRate
	for _, f := range strings.Fields(args) {
		if n, err := strconv.Atoi(f); err == nil {
			if n <= 0 {
				return "", 0, fmt.Errorf("invalid baud rate %d", n)
			}
			rate = n
			continue
		}
		name = f
	}
	return name, rate, nil
}

// parseSaveArgs accepts "[path] [--text|--bytes] [--dump]".
func parseSaveArgs(args string, asBytes bool) (path string, bytesMode, dump bool, err error) {
	bytesMode = asBytes
	for _, f := range strings.Fields(args) {
		switch f {
		case "--text":
			bytesMode = false
		case "--bytes":
			bytesMode = true
		case "--dump":
			dump = true
		default:
			if strings.HasPrefix(f, "--") {
				return "", false, false, fmt.Errorf("unknown flag %s", f)
			}
			path = f
		}
	}
	return path, bytesMode, dump, nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

const maxMatchLines = 20

// registerCoreCommands adds all built-in slash commands to the registry.
func (r *Registry) registerCoreCommands() {
	core := []*Command{
		{
			Name:        "open",
			Usage:       "/open [line] [rate]",
			Description: "Open a session on a line",
			Execute: func(ctx *CommandContext, args string) (string, error) {
				if ctx.Open == nil {
					return "Open not available.", nil
				}
				name, rate, err := parseOpenArgs(args, ctx.DefaultLine, ctx.DefaultRate)
				if err != nil {
					return "", err
				}
				ctx.Open(name, rate)
				return "", nil
			},
		},
		{
			Name:        "close",
			Usage:       "/close",
			Description: "Close the running session",
			Execute: func(ctx *CommandContext, _ string) (string, error) {
				if ctx.Close == nil {
					return "Close not available.", nil
				}
				ctx.Close()
				return "", nil
			},
		},
		{
			Name:        "send",
			Usage:       "/send <text>",
			Description: "Write text to the line",
			Execute: func(ctx *CommandContext, args string) (string, error) {
				if ctx.Send == nil {
					return "Send not available.", nil
				}
				if args == "" {
					return "Usage: /send <text>", nil
				}
				ctx.Send(args)
				return "", nil
			},
		},
		{
			Name:        "save",
			Usage:       "/save [path] [--text|--bytes] [--dump]",
			Description: "Save the read buffer to a file",
			Execute: func(ctx *CommandContext, args string) (string, error) {
				if ctx.Save == nil {
					return "Save not available.", nil
				}
				path, asBytes, dump, err := parseSaveArgs(args, ctx.SaveAsBytes)
				if err != nil {
					return "", err
				}
				if path == "" && ctx.SavePath != nil {
					path = ctx.SavePath()
				}
				if path == "" {
					return "Usage: /save <path>", nil
				}
				ctx.Save(path, asBytes, dump)
				return "", nil
			},
		},
		{
			Name:        "clear",
			Usage:       "/clear",
			Description: "Discard the read buffer",
			Execute: func(ctx *CommandContext, _ string) (string, error) {
				if ctx.Clear == nil {
					return "Clear not available.", nil
				}
				ctx.Clear()
				return "Read buffer cleared.", nil
			},
		},
		{
			Name:        "usage",
			Usage:       "/usage",
			Description: "Show read buffer usage",
			Execute: func(ctx *CommandContext, _ string) (string, error) {
				if ctx.Status == nil {
					return "Usage not available.", nil
				}
				st := ctx.Status()
				if st.Limit <= 0 {
					return fmt.Sprintf("Read buffer: %s", FormatBytes(st.Used)), nil
				}
				pct := float64(st.Used) * 100 / float64(st.Limit)
				return fmt.Sprintf("Read buffer: %s of %s (%.1f%%)",
					FormatBytes(st.Used), FormatBytes(st.Limit), pct), nil
			},
		},
		{
			Name:        "match",
			Usage:       "/match <regex>",
			Description: "Search the read buffer",
			Execute: func(ctx *CommandContext, args string) (string, error) {
				if ctx.Match == nil {
					return "Match not available.", nil
				}
				if args == "" {
					return "Usage: /match <regex>", nil
				}
				hits, err := ctx.Match(args)
				if err != nil {
					return "", err
				}
				if len(hits) == 0 {
					return "No matches.", nil
				}
				var b strings.Builder
				fmt.Fprintf(&b, "%d match(es):\n", len(hits))
				for i, h := range hits {
					if i == maxMatchLines {
						fmt.Fprintf(&b, "  ... %d more\n", len(hits)-maxMatchLines)
						break
					}
					fmt.Fprintf(&b, "  %8d  %q\n", h.Offset, h.Text)
				}
				return b.String(), nil
			},
		},
		{
			Name:        "ts",
			Usage:       "/ts on|off",
			Description: "Toggle timestamps on received data",
			Execute: func(ctx *CommandContext, args string) (string, error) {
				if ctx.SetTimestamps == nil {
					return "Timestamps not available.", nil
				}
				on, err := parseToggle(args)
				if err != nil {
					return "", err
				}
				ctx.SetTimestamps(on)
				return "Timestamps " + onOff(on) + ".", nil
			},
		},
		{
			Name:        "nl",
			Usage:       "/nl on|off",
			Description: "Toggle newline after received data",
			Execute: func(ctx *CommandContext, args string) (string, error) {
				if ctx.SetNewline == nil {
					return "Newline not available.", nil
				}
				on, err := parseToggle(args)
				if err != nil {
					return "", err
				}
				ctx.SetNewline(on)
				return "Newline " + onOff(on) + ".", nil
			},
		},
		{
			Name:        "eol",
			Usage:       "/eol none|cr|lf|crlf",
			Description: "Set the line ending appended to sent text",
			Execute: func(ctx *CommandContext, args string) (string, error) {
				if ctx.SetLineEnding == nil {
					return "Line ending not available.", nil
				}
				name := strings.ToLower(strings.TrimSpace(args))
				if err := ctx.SetLineEnding(name); err != nil {
					return "", err
				}
				return "Line ending: " + name + ".", nil
			},
		},
		{
			Name:        "ports",
			Usage:       "/ports",
			Description: "List serial ports",
			Execute: func(ctx *CommandContext, _ string) (string, error) {
				if ctx.Ports == nil {
					return "Port listing not available.", nil
				}
				ports, err := ctx.Ports()
				if err != nil {
					return "", fmt.Errorf("listing ports: %w", err)
				}
				if len(ports) == 0 {
					return "No serial ports found.", nil
				}
				var b strings.Builder
				b.WriteString("Serial ports:\n")
				for _, p := range ports {
					fmt.Fprintf(&b, "  - %s\n", p)
				}
				return b.String(), nil
			},
		},
		{
			Name:        "status",
			Usage:       "/status",
			Description: "Show session status",
			Execute: func(ctx *CommandContext, _ string) (string, error) {
				if ctx.Status == nil {
					return "Status not available.", nil
				}
				st := ctx.Status()
				var b strings.Builder
				fmt.Fprintf(&b, "State:       %s\n", st.State)
				if st.Line != "" {
					fmt.Fprintf(&b, "Line:        %s @ %d baud\n", st.Line, st.Rate)
					fmt.Fprintf(&b, "Session:     %s\n", st.ID)
					if st.Detail != "" {
						fmt.Fprintf(&b, "Peer:        %s\n", st.Detail)
					}
					if !st.OpenedAt.IsZero() && ctx.Now != nil {
						fmt.Fprintf(&b, "Open for:    %s\n", ctx.Now().Sub(st.OpenedAt).Round(time.Second))
					}
				}
				fmt.Fprintf(&b, "Buffer:      %s\n", FormatBytes(st.Used))
				fmt.Fprintf(&b, "Timestamps:  %s\n", onOff(st.Timestamps))
				fmt.Fprintf(&b, "Newline:     %s\n", onOff(st.Newline))
				fmt.Fprintf(&b, "Line ending: %s", st.LineEnding)
				if st.LastError != nil {
					fmt.Fprintf(&b, "\nLast error:  %v", st.LastError)
				}
				return b.String(), nil
			},
		},
		{
			Name:        "help",
			Usage:       "/help",
			Description: "Show available commands",
			Execute: func(_ *CommandContext, _ string) (string, error) {
				var b strings.Builder
				b.WriteString("Available commands:\n")
				for _, cmd := range r.List() {
					fmt.Fprintf(&b, "  %-40s %s\n", cmd.Usage, cmd.Description)
				}
				return b.String(), nil
			},
		},
		{
			Name:        "quit",
			Usage:       "/quit",
			Description: "Close any session and exit",
			Execute: func(ctx *CommandContext, _ string) (string, error) {
				if ctx.ExitFn == nil {
					return "Exit not available.", nil
				}
				ctx.ExitFn()
				return "Goodbye.", nil
			},
		},
	}
	for _, cmd := range core {
		r.commands[cmd.Name] = cmd
		r.names = append(r.names, cmd.Name)
	}
	sort.Strings(r.names)
}
