package util

import (
	"github.com/AlecAivazis/survey/v2"
)

// GetYesNoPrompt asks message and returns the answer, def when the user just
// hits enter.
func GetYesNoPrompt(message string, def bool) (bool, error) {
	var resp bool
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &resp); err != nil {
		return false, err
	}
	return resp, nil
}

// GetInputPrompt asks for a single line of input.
func GetInputPrompt(message, def string) (string, error) {
	var resp string
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &resp, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return resp, nil
}
