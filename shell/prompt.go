package shell

import (
	"strings"

	"github.com/c-bata/go-prompt"
)

// Complete suggests command names for the word being typed.
func (sh *Shell) Complete(doc prompt.Document) (suggest []prompt.Suggest) {
	before := doc.TextBeforeCursor()
	if strings.Contains(before, " ") {
		return
	}

	for _, cmd := range commands {
		suggest = append(suggest, prompt.Suggest{Text: cmd.Name, Description: f(cmd.Help)})
	}

	return prompt.FilterHasPrefix(suggest, doc.GetWordBeforeCursor(), false)
}

// Interactive runs the shell with line editing, history and completion
// until exit. It must only be used when stdin is a terminal.
func (sh *Shell) Interactive() {
	p := prompt.New(
		func(line string) { sh.Execute(line) },
		sh.Complete,
		prompt.OptionPrefix(sh.Prompt),
		prompt.OptionTitle("mighf"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && sh.done
		}),
		prompt.OptionAddKeyBind(
			prompt.KeyBind{
				Key: prompt.ControlD,
				Fn: func(*prompt.Buffer) {
					sh.done = true
				},
			},
		),
	)

	p.Run()
}
