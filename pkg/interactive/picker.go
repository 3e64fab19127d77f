// Package interactive provides terminal prompts for narrowing a run.
package interactive

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ethpandaops/tapcheck/internal/testcase"
)

var (
	// ErrCanceled is returned when the user aborts the prompt
	ErrCanceled = errors.New("selection canceled")
	// ErrNothingSelected is returned when the user confirms an empty selection
	ErrNothingSelected = errors.New("no cases selected")
)

// AskFunc matches survey.AskOne so prompts can be answered in tests.
type AskFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

// Picker asks which cases to run.
type Picker struct {
	ask AskFunc
}

// NewPicker creates a picker backed by the terminal.
func NewPicker() *Picker {
	return &Picker{ask: survey.AskOne}
}

// NewPickerWithAsk creates a picker that answers prompts through ask.
func NewPickerWithAsk(ask AskFunc) *Picker {
	return &Picker{ask: ask}
}

// Pick shows every case and returns the chosen ones in their original order.
func (p *Picker) Pick(cases []*testcase.CaseSpec) ([]*testcase.CaseSpec, error) {
	if len(cases) == 0 {
		return cases, nil
	}

	choices := make([]string, 0, len(cases))
	byChoice := make(map[string]int, len(cases))

	for i, c := range cases {
		choice := c.ID()
		if c.ExpectedFail {
			choice = fmt.Sprintf("%s (expected failure)", choice)
		}

		choices = append(choices, choice)
		byChoice[choice] = i
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message:  "Which cases would you like to run?",
		Options:  choices,
		PageSize: 15,
	}

	if err := p.ask(prompt, &selected); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}

	keep := make([]bool, len(cases))
	for _, choice := range selected {
		if i, ok := byChoice[choice]; ok {
			keep[i] = true
		}
	}

	picked := make([]*testcase.CaseSpec, 0, len(selected))
	for i, c := range cases {
		if keep[i] {
			picked = append(picked, c)
		}
	}

	return picked, nil
}
