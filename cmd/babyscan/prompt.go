package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

var errPromptCancelled = errors.New("cancelled")

// prompter asks for missing values on the terminal.
type prompter struct {
	rl *readline.Instance
}

func newPrompter() (*prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &prompter{rl: rl}, nil
}

func (p *prompter) Close() error {
	return p.rl.Close()
}

// ask prompts until validate accepts the answer. Ctrl+C or Ctrl+D cancels.
func (p *prompter) ask(label string, validate func(string) error) (string, error) {
	p.rl.SetPrompt(cyan(label + ": "))
	for {
		line, err := p.rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return "", errPromptCancelled
		}
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if validate == nil {
			return line, nil
		}
		if err := validate(line); err != nil {
			fmt.Printf("%s %v\n", red("✗"), err)
			continue
		}
		return line, nil
	}
}

// confirm asks a yes/no question; anything but y/yes is no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question+" [y/N]", nil)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
