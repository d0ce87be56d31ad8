package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter completes command names, options and option values.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new":      {Options: []string{"-swap", "-ai", "-aistarts", "-size"}},
	"set":      {Args: []string{"size", "ai", "aistarts", "swap"}},
	"autoplay": {Options: []string{"-games", "-size", "-threads", "-depth", "-time"}},
	"score":    {Args: []string{"clear"}},
	"help":     {Args: []string{"new", "set", "autoplay"}},
}

var commandNames = []string{
	"new", "play", "ai", "hint", "show", "score", "finish", "set", "autoplay", "script", "help", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		switch {
		case lastCompleteField == "-swap" || lastCompleteField == "-ai" || lastCompleteField == "-aistarts":
			completions = boolValues
		case cmdName == "set" && len(fields) >= 2 && (endsWithSpace && len(fields) == 2 || len(fields) == 3):
			if fields[1] != "size" {
				completions = boolValues
			}
		default:
			if md, ok := commandMetadata[cmdName]; ok {
				if strings.HasPrefix(prefix, "-") || len(md.Args) == 0 {
					completions = md.Options
				} else {
					completions = md.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len([]rune(prefix))
}
