package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Color codes for terminal output, mirrored from the style used across this
// codebase's CLI layer.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Output handles formatted CLI output, switching between human-readable and
// JSON rendering based on the --json flag.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput builds an Output bound to cmd's flags and stdout.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && isTerminal(),
	}
}

func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func (o *Output) IsJSON() bool { return o.jsonMode }

// JSON encodes data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	enc := json.NewEncoder(o.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

func (o *Output) Success(format string, args ...interface{}) { o.colored(colorGreen, format, args...) }
func (o *Output) Error(format string, args ...interface{})   { o.colored(colorRed, format, args...) }
func (o *Output) Warning(format string, args ...interface{}) { o.colored(colorYellow, format, args...) }
func (o *Output) Info(format string, args ...interface{})    { o.colored(colorCyan, format, args...) }
func (o *Output) Bold(format string, args ...interface{})    { o.colored(colorBold, format, args...) }
func (o *Output) Dim(format string, args ...interface{})     { o.colored(colorDim, format, args...) }

func (o *Output) colored(color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s%s%s\n", color, msg, colorReset)
	} else {
		fmt.Fprintln(o.writer, msg)
	}
}
