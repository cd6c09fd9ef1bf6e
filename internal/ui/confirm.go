package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompts read from Input and write to Output. Tests swap them.
var (
	Input  io.Reader = os.Stdin
	Output io.Writer = os.Stdout
)

func readLine() string {
	line, _ := bufio.NewReader(Input).ReadString('\n')
	return strings.TrimSpace(line)
}

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Fprintf(Output, "%s [y/N]: ", StyleWarning.Render(prompt))
	line := strings.ToLower(readLine())
	return line == "y" || line == "yes"
}

// ConfirmDanger is like Confirm but styled with the error color (for mainnet transactions).
func ConfirmDanger(prompt string) bool {
	fmt.Fprintf(Output, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	line := strings.ToLower(readLine())
	return line == "y" || line == "yes"
}

// PromptInput asks for a line of text. An empty answer returns def.
func PromptInput(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(Output, "%s %s: ", StyleValue.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(Output, "%s: ", StyleValue.Render(prompt))
	}
	if line := readLine(); line != "" {
		return line
	}
	return def
}
