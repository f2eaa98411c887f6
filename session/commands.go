package session

import (
	"strings"

	"github.com/Ayvan/ipk24chat-client/models"
)

// View is the part of the session a command handler may read.
type View struct {
	State       State
	DisplayName string
}

// Outcome is what a local command produces: a message to send, the session
// fields after the command, and text for the user.
type Outcome struct {
	Message     models.Message
	State       State
	DisplayName string
	Print       string
}

type commandHandler func(v View, args []string) (Outcome, error)

type command struct {
	usage       string
	description string
	handler     commandHandler
}

var commands map[string]command

// order of /help output
var commandOrder = []string{"/auth", "/join", "/rename", "/getname", "/getstate", "/help"}

func init() {
	commands = map[string]command{
		"/auth": {
			usage:       "/auth {Username} {Secret} {DisplayName}",
			description: "Sends AUTH command to the server with the provided parameters",
			handler:     authCommand,
		},
		"/join": {
			usage:       "/join {ChannelID}",
			description: "Sends JOIN command to the server with the provided parameters",
			handler:     joinCommand,
		},
		"/rename": {
			usage:       "/rename {DisplayName}",
			description: "Locally changes the display name of the user to be sent with new messages",
			handler:     renameCommand,
		},
		"/getname": {
			usage:       "/getname",
			description: "Prints out the current display name",
			handler:     getNameCommand,
		},
		"/getstate": {
			usage:       "/getstate",
			description: "Prints out the current state of the client",
			handler:     getStateCommand,
		},
		"/help": {
			usage:       "/help",
			description: "Prints out supported local commands with their parameters and a description",
			handler:     helpCommand,
		},
	}
}

// HandleInput turns one line of user input into an Outcome and applies the
// session mutation it carries. On error nothing changes and nothing is sent.
func (s *Session) HandleInput(line string) (Outcome, error) {
	line = models.Sanitize(strings.TrimRight(line, "\r\n"))
	if strings.TrimSpace(line) == "" {
		return Outcome{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return Outcome{}, ErrClosing
	}
	if s.state == Authenticating {
		return Outcome{}, ErrAwaitingReply
	}

	v := View{State: s.state, DisplayName: s.displayName}

	var (
		out Outcome
		err error
	)
	if strings.HasPrefix(line, "/") {
		fields := strings.Fields(line)
		cmd, ok := commands[fields[0]]
		if !ok {
			return Outcome{}, ErrUnknownCommand
		}
		out, err = cmd.handler(v, fields[1:])
	} else {
		out, err = chatText(v, line)
	}
	if err != nil {
		return Outcome{}, err
	}

	s.state = out.State
	s.displayName = out.DisplayName

	return out, nil
}

func unchanged(v View) Outcome {
	return Outcome{State: v.State, DisplayName: v.DisplayName}
}

func usage(name string, err error) error {
	return &UsageError{Usage: commands[name].usage, Err: err}
}

func authCommand(v View, args []string) (Outcome, error) {
	if len(args) != 3 {
		return Outcome{}, usage("/auth", nil)
	}

	auth := &models.Auth{Username: args[0], Secret: args[1], DisplayName: args[2]}
	if err := auth.Validate(); err != nil {
		return Outcome{}, usage("/auth", err)
	}
	if v.State != Default {
		return Outcome{}, ErrCannotAuth
	}

	return Outcome{Message: auth, State: Authenticating, DisplayName: auth.DisplayName}, nil
}

func joinCommand(v View, args []string) (Outcome, error) {
	if len(args) != 1 {
		return Outcome{}, usage("/join", nil)
	}
	if err := models.ValidateChannelID(args[0]); err != nil {
		return Outcome{}, usage("/join", err)
	}
	if v.State != Open {
		return Outcome{}, ErrCannotJoin
	}

	join := &models.Join{ChannelID: args[0], DisplayName: v.DisplayName}
	if err := join.Validate(); err != nil {
		return Outcome{}, err
	}

	return Outcome{Message: join, State: Joining, DisplayName: v.DisplayName}, nil
}

func renameCommand(v View, args []string) (Outcome, error) {
	if len(args) != 1 {
		return Outcome{}, usage("/rename", nil)
	}
	if err := models.ValidateDisplayName(args[0]); err != nil {
		return Outcome{}, usage("/rename", err)
	}

	return Outcome{State: v.State, DisplayName: args[0]}, nil
}

func getNameCommand(v View, _ []string) (Outcome, error) {
	out := unchanged(v)
	out.Print = v.DisplayName
	return out, nil
}

func getStateCommand(v View, _ []string) (Outcome, error) {
	out := unchanged(v)
	out.Print = v.State.String()
	return out, nil
}

func helpCommand(v View, _ []string) (Outcome, error) {
	out := unchanged(v)
	out.Print = HelpText()
	return out, nil
}

// HelpText lists the supported local commands.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Supported local commands:")
	for _, name := range commandOrder {
		cmd := commands[name]
		b.WriteString("\n")
		b.WriteString(cmd.usage)
		b.WriteString("\n\t")
		b.WriteString(cmd.description)
	}
	return b.String()
}

func chatText(v View, line string) (Outcome, error) {
	if v.State != Open {
		return Outcome{}, ErrNotOpen
	}

	msg := &models.Msg{DisplayName: v.DisplayName, Contents: line}
	if err := msg.Validate(); err != nil {
		return Outcome{}, err
	}

	out := unchanged(v)
	out.Message = msg
	return out, nil
}
