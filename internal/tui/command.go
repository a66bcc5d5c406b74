package tui

import "strings"

// Command is one parsed prompt command, already lowercased and trimmed.
type Command struct {
	Name string
	Args string
}

// ParseCommand splits a ':' prompt line into the command word and the
// rest. The leading ':' is stripped by the prompt before we see it.
func ParseCommand(input string) Command {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	return Command{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}
}
