package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"lookout/internal/api"
)

// statusKind selects the bracket tag and color of one status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset   = "\x1b[0m"
	headerColor = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

// statusStyles is indexed by statusKind.
var statusStyles = [...]struct {
	tag   string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

func (k statusKind) style() (tag, color string) {
	if k < 0 || int(k) >= len(statusStyles) {
		k = statusInfo
	}
	s := statusStyles[k]
	return s.tag, s.color
}

// renderStatusLine formats one aligned "Label:  [KIND] detail" row.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag, color := kind.style()
	detail := "[" + tag + "]"
	if message != "" {
		detail += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", detail)
	if colorize && color != "" {
		return color + line + ansiReset
	}
	return line
}

func printSectionHeader(w io.Writer, title string, colorize bool) {
	header := "== " + strings.TrimSpace(title) + " =="
	for _, line := range []string{header, strings.Repeat("-", len(header))} {
		if colorize {
			line = headerColor + line + ansiReset
		}
		fmt.Fprintln(w, line)
	}
}

// renderProviderTable lists the rotation order top to bottom. Selection
// counts come from the running daemon; offline views omit the column.
func renderProviderTable(providers []api.ProviderStatus, withSelections bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if withSelections {
		tw.AppendHeader(table.Row{"Provider", "Model", "Selections"})
		for _, p := range providers {
			tw.AppendRow(table.Row{p.Name, p.Model, p.Selections})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		})
	} else {
		tw.AppendHeader(table.Row{"Provider", "Model"})
		for _, p := range providers {
			tw.AppendRow(table.Row{p.Name, p.Model})
		}
	}
	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd()))
}
