// Package prompt implements the interactive configuration flow.
//
// Every prompt shows its default in brackets; pressing Enter accepts it.
// Invalid input re-prompts rather than failing the run.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter reads answers from r and writes prompts to w.
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// New creates a Prompter over the given reader and writer.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// String prompts for a free-form value. An empty answer returns the
// default; when there is no default the prompt repeats until something is
// entered.
func (p *Prompter) String(label, def string) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.w, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.w, "%s: ", label)
		}

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		if def != "" {
			return def, nil
		}
		fmt.Fprintln(p.w, "Input required. Please try again.")
	}
}

// Int prompts for a non-negative integer, re-prompting on invalid input.
func (p *Prompter) Int(label string, def int) (int, error) {
	for {
		fmt.Fprintf(p.w, "%s [%d]: ", label, def)

		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}

		n, err := strconv.Atoi(answer)
		if err != nil || n < 0 {
			fmt.Fprintln(p.w, "Please enter a valid positive number")
			continue
		}
		return n, nil
	}
}

// YesNo prompts for a y/n answer. Anything starting with y or Y counts as
// yes; an empty answer returns the default.
func (p *Prompter) YesNo(label string, def bool) (bool, error) {
	defStr := "n"
	if def {
		defStr = "y"
	}

	fmt.Fprintf(p.w, "%s (y/n) [%s]: ", label, defStr)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// Select prompts for a numbered choice among options, re-prompting until a
// valid selection is made. An empty answer returns the default when the
// default is one of the options. Descriptions, when given, are shown next
// to the option names; extra descriptions are ignored.
func (p *Prompter) Select(label string, options, descriptions []string, def string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	width := 0
	for _, option := range options {
		if len(option) > width {
			width = len(option)
		}
	}

	fmt.Fprintf(p.w, "\n%s\n", label)
	defaultIndex := 0
	for i, option := range options {
		if i < len(descriptions) && descriptions[i] != "" {
			fmt.Fprintf(p.w, "  %d. %-*s - %s\n", i+1, width, option, descriptions[i])
		} else {
			fmt.Fprintf(p.w, "  %d. %s\n", i+1, option)
		}
		if option == def {
			defaultIndex = i + 1
		}
	}

	for {
		if defaultIndex > 0 {
			fmt.Fprintf(p.w, "Enter selection [1-%d] [%d]: ", len(options), defaultIndex)
		} else {
			fmt.Fprintf(p.w, "Enter selection [1-%d]: ", len(options))
		}

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			if defaultIndex > 0 {
				return options[defaultIndex-1], nil
			}
			fmt.Fprintln(p.w, "Input required. Please try again.")
			continue
		}

		index, err := strconv.Atoi(answer)
		if err != nil || index < 1 || index > len(options) {
			fmt.Fprintf(p.w, "Please enter a number between 1 and %d\n", len(options))
			continue
		}
		return options[index-1], nil
	}
}

// Keywords prompts for a comma-separated keyword list and returns the
// trimmed, non-empty entries. An empty answer returns the defaults.
func (p *Prompter) Keywords(label string, def []string) ([]string, error) {
	fmt.Fprintf(p.w, "%s [%s]: ", label, strings.Join(def, ", "))

	answer, err := p.readLine()
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return def, nil
	}

	var keywords []string
	for _, k := range strings.Split(answer, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords, nil
}
