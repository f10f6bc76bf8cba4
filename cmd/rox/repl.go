package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	rox "github.com/xirelogy/go-rox"
)

// repl interprets one line at a time against a single interpreter, so
// globals survive between lines. Errors are reported and the loop goes on.
func repl(in *rox.Interpreter, stdin io.Reader, stderr io.Writer) int {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runReadline(in, stderr)
	}
	return runLines(in, stdin, stderr)
}

func runReadline(in *rox.Interpreter, stderr io.Writer) int {
	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".rox_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: historyFile,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitIOErr
	}
	defer rl.Close()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil { // Ctrl-D
			fmt.Fprintln(stderr)
			return exitOK
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		in.Interpret(line)
	}
}

func runLines(in *rox.Interpreter, stdin io.Reader, stderr io.Writer) int {
	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		in.Interpret(line)
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitIOErr
	}
	return exitOK
}
