package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/embedhttp/internal/request"
)

var inspectFlags struct {
	maxBody int64
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Decode a raw HTTP/1.1 request",
	Long: `Decode a raw HTTP/1.1 request with the server's parser and print what
it sees. Reads from stdin when no file is given. Requests in the file are
decoded one after another, as on a persistent connection.

Examples:
  embedhttp inspect request.txt
  printf 'GET /a?b=c HTTP/1.1\r\nHost: x\r\n\r\n' | embedhttp inspect`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Int64Var(&inspectFlags.maxBody, "max-body", request.MaxBodyBytes, "maximum body size in bytes")
}

func runInspect(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %q: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	limits := request.DefaultLimits()
	limits.MaxBodyBytes = inspectFlags.maxBody
	if limits.MaxChunkBytes > limits.MaxBodyBytes {
		limits.MaxChunkBytes = limits.MaxBodyBytes
	}
	return inspect(bufio.NewReader(in), cmd.OutOrStdout(), limits)
}

func inspect(r *bufio.Reader, w io.Writer, limits request.Limits) error {
	for n := 1; ; n++ {
		req, err := request.ParseWithLimits(r, limits)
		if err != nil {
			if n > 1 && errors.Is(err, request.ErrClientDisconnected) {
				return nil
			}
			return fmt.Errorf("request %d: %w", n, err)
		}

		if n > 1 {
			fmt.Fprintln(w)
		}
		printRequest(w, n, req)

		if !req.KeepAlive {
			return nil
		}
	}
}

func printRequest(w io.Writer, n int, req *request.Request) {
	fmt.Fprintf(w, "request %d\n", n)
	fmt.Fprintf(w, "  method:     %s\n", req.Method)
	fmt.Fprintf(w, "  path:       %s\n", req.Path)
	fmt.Fprintf(w, "  version:    %s\n", req.Version)
	fmt.Fprintf(w, "  keep-alive: %t\n", req.KeepAlive)

	if q := req.QueryParams(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "  query:")
		for _, k := range keys {
			fmt.Fprintf(w, "    %s = %q\n", k, q[k])
		}
	}

	fmt.Fprintln(w, "  headers:")
	req.Headers.Each(func(name, value string) {
		fmt.Fprintf(w, "    %s: %s\n", name, value)
	})

	fmt.Fprintf(w, "  body:       %d bytes\n", len(req.Body))
	if len(req.Body) > 0 {
		fmt.Fprintf(w, "    %q\n", req.BodyString())
	}
}
