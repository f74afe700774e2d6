// Command edl runs EDL scripts and hosts the interactive repl.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	edl "github.com/edl-lang/edl"
)

const (
	historyFile = ".edl_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var (
	errColor = color.New(color.FgRed)
	valColor = color.New(color.FgHiBlue)
)

var cli struct {
	Run     RunCmd     `cmd:"" help:"Run a script file."`
	Repl    ReplCmd    `cmd:"" default:"1" help:"Start the interactive repl."`
	Version VersionCmd `cmd:"" help:"Print the interpreter version."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("edl"),
		kong.Description("The EDL scripting language."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

type RunCmd struct {
	File string `arg:"" type:"existingfile" help:"Script to execute."`
}

func (c *RunCmd) Run() error {
	if _, err := edl.RunFile(c.File); err != nil {
		errColor.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(edl.Version)
	return nil
}

type ReplCmd struct{}

func (c *ReplCmd) Run() error {
	fmt.Printf("EDL %s repl\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", edl.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sess := edl.NewSession()

	for {
		code, ok := readUnit(ln)
		if !ok {
			fmt.Println()
			return nil
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return nil
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		v, err := sess.Eval(code)
		if err != nil {
			errColor.Fprintln(os.Stderr, err.Error())
			continue
		}
		if v.Tag != edl.VTNil {
			valColor.Println(edl.FormatValueREPL(v))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readUnit collects lines until they parse, continuing past errors that sit
// at end of input (an open block, an unfinished expression). Returns false
// on Ctrl+D.
func readUnit(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := edl.Parse(src); perr == nil || !edl.IsIncomplete(perr) {
			return src, true
		}
	}
}
