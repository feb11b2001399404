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
	"fmt"

	spfcbr "github.com/spf13/cobra"

	"github.com/nabbar/tor-control/logging"
	"github.com/nabbar/tor-control/queue"
)

func newGetInfoCommand() *spfcbr.Command {
	return &spfcbr.Command{
		Use:   "getinfo KEY [KEY...]",
		Short: "Query one or more GETINFO keys and print their values",
		Args:  spfcbr.MinimumNArgs(1),
		RunE: func(cmd *spfcbr.Command, args []string) error {
			ctx, cancel := defaultContext()
			defer cancel()

			s, err := connect(ctx, logging.Nop)
			if err != nil {
				return err
			}
			defer s.Destroy()

			h, err := s.Enqueue(queue.Command{Verb: "GETINFO", Args: args})
			if err != nil {
				return err
			}

			group, err := h.AwaitResult(ctx)
			if err != nil {
				return err
			}

			kv := keyValuesOf(group)
			for _, k := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, kv[k])
			}
			return nil
		},
	}
}
