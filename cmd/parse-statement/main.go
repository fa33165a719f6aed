// Command parse-statement parses an M-Pesa PDF statement and prints the result
// as JSON.
//
//	parse-statement [-password PIN] [-qr=false] statement.pdf
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/pdf"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("parse-statement", flag.ContinueOnError)
	fs.SetOutput(stderr)
	password := fs.String("password", "", "statement password, if the PDF is protected")
	qr := fs.Bool("qr", true, "decode the QR code on the first page")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: parse-statement [-password PIN] [-qr=false] statement.pdf")
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "parse-statement: %v\n", err)
		return 1
	}
	defer f.Close()

	p := parser.New(pdf.NewLoader(), logger).WithHintDecoder(pdf.NewHintDecoder(*qr, logger))
	stmt, err := p.Parse(f, *password)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(stderr, "parse-statement: %s (%s)\n", perr.Error(), perr.Kind)
			return 3
		}
		fmt.Fprintf(stderr, "parse-statement: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stmt.Record()); err != nil {
		fmt.Fprintf(stderr, "parse-statement: %v\n", err)
		return 1
	}
	return 0
}
