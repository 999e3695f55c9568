package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Display prints command output. Styled output is used on terminals and
// plain text everywhere else.
type Display interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	Table(header []string, rows [][]string) error
	Writer() io.Writer
}

type display struct {
	out    io.Writer
	styled bool
}

// NewDisplay creates a display writing to out, or stdout when out is nil
func NewDisplay(out io.Writer) Display {
	if out == nil {
		out = os.Stdout
	}
	return &display{out: out, styled: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (d *display) Writer() io.Writer { return d.out }

func (d *display) Info(format string, args ...interface{}) {
	d.print(pterm.Info, "", format, args...)
}

func (d *display) Success(format string, args ...interface{}) {
	d.print(pterm.Success, "", format, args...)
}

func (d *display) Warning(format string, args ...interface{}) {
	d.print(pterm.Warning, "warning: ", format, args...)
}

func (d *display) Error(format string, args ...interface{}) {
	d.print(pterm.Error, "error: ", format, args...)
}

func (d *display) print(p pterm.PrefixPrinter, plainPrefix, format string, args ...interface{}) {
	if d.styled {
		fmt.Fprintln(d.out, strings.TrimRight(p.Sprintf(format, args...), "\n"))
		return
	}
	fmt.Fprintf(d.out, plainPrefix+format+"\n", args...)
}

func (d *display) Table(header []string, rows [][]string) error {
	if d.styled {
		data := make(pterm.TableData, 0, len(rows)+1)
		data = append(data, header)
		data = append(data, rows...)

		out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(d.out, out)
		return err
	}

	tw := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
