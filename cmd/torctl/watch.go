/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	spfcbr "github.com/spf13/cobra"

	"github.com/nabbar/tor-control/logging"
	"github.com/nabbar/tor-control/reply"
)

func newWatchCommand() *spfcbr.Command {
	return &spfcbr.Command{
		Use:   "watch EVENT [EVENT...]",
		Short: "Subscribe to one or more event kinds and print their payloads until interrupted",
		Args:  spfcbr.MinimumNArgs(1),
		RunE: func(cmd *spfcbr.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			s, err := connect(ctx, logging.Nop)
			if err != nil {
				return err
			}
			defer s.Destroy()

			out := cmd.OutOrStdout()
			for _, a := range args {
				kind := reply.EventKind(a)
				s.Subscribe(kind, "", func(payload string) {
					fmt.Fprintf(out, "%s %s\n", kind, payload)
				})
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			select {
			case <-sig:
			case <-ctx.Done():
			}
			return nil
		},
	}
}
