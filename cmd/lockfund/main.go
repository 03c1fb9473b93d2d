package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and command line arguments
// except the program name and the command name. It parses the arguments on
// its own using the flag package and reads and writes only the provided
// input and output. Errors are printed to os.Stderr by main.
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"config-get":     cmdConfigGet,
	"config-init":    cmdConfigInit,
	"config-set":     cmdConfigSet,
	"create-config":  cmdCreateConfig,
	"decrypt":        cmdDecrypt,
	"derive":         cmdDerive,
	"encrypt":        cmdEncrypt,
	"escrow-config":  cmdEscrowConfig,
	"keyaddr":        cmdKeyaddr,
	"keygen":         cmdKeygen,
	"send":           cmdSend,
	"transfer-sol":   cmdTransferSol,
	"transfer-token": cmdTransferToken,
	"version":        cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s encrypts keys and interacts with the lock fund program.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set during the compilation time.
var gitHash string = "dev"
