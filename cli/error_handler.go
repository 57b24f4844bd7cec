package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/searchcore/errors"
)

// ErrorHandler prints user-friendly messages for command errors.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to out.
func NewErrorHandler(verbose bool, out io.Writer) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     out,
	}
}

// Handle prints err and returns it.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	red := lipgloss.NewStyle().Bold(true).Foreground(palette.Red)
	hint := func(format string, args ...interface{}) {
		fmt.Fprintln(h.Out, mutedStyle.Render(fmt.Sprintf(format, args...)))
	}

	fmt.Fprintf(h.Out, "%s %v\n", red.Render("Error:"), err)

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		hint("Create a searchcore.yml or pass --config.")

	case errors.ErrCodeConfigValidation:
		hint("Run 'searchcore schema' for the expected structure.")

	case errors.ErrCodeUnknownWidget:
		hint("Run 'searchcore refinements' or 'searchcore state show' to see mounted widgets.")

	case errors.ErrCodeStateLocked:
		if se, ok := err.(*errors.SearchError); ok {
			hint("Another searchcore process holds %v.lock", se.Details["path"])
		}
	}

	if h.Verbose {
		if se, ok := err.(*errors.SearchError); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", se.ToJSON())
		}
	}
	return err
}
