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

// Command torctl is a small sample client demonstrating the session core:
// connect to a running Tor control listener, issue one command, subscribe
// to a set of events, and print whatever arrives until interrupted.
package main

import (
	"fmt"
	"os"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

var cfgFile string

func newRootCommand() *spfcbr.Command {
	root := &spfcbr.Command{
		Use:           "torctl",
		Short:         "Inspect and drive a running Tor control listener",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.torctl.yaml)")
	root.PersistentFlags().String("transport", "tcp", "transport kind: tcp or unix")
	root.PersistentFlags().String("address", "127.0.0.1:9051", "host:port for tcp, or socket path for unix")
	root.PersistentFlags().String("auth", "", "auth method override: NULL, PASSWORD, COOKIE, SAFECOOKIE (empty: auto)")
	root.PersistentFlags().String("password", "", "password for PASSWORD authentication")
	root.PersistentFlags().String("cookie-path", "", "override the cookie file path PROTOCOLINFO advertises")

	_ = spfvpr.BindPFlag("transport", root.PersistentFlags().Lookup("transport"))
	_ = spfvpr.BindPFlag("address", root.PersistentFlags().Lookup("address"))
	_ = spfvpr.BindPFlag("auth", root.PersistentFlags().Lookup("auth"))
	_ = spfvpr.BindPFlag("password", root.PersistentFlags().Lookup("password"))
	_ = spfvpr.BindPFlag("cookiePath", root.PersistentFlags().Lookup("cookie-path"))

	spfcbr.OnInitialize(initConfig)

	root.AddCommand(newGetInfoCommand())
	root.AddCommand(newWatchCommand())

	return root
}

func initConfig() {
	spfvpr.SetEnvPrefix("TORCTL")
	spfvpr.AutomaticEnv()

	if cfgFile != "" {
		spfvpr.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			spfvpr.AddConfigPath(home)
		}
		spfvpr.SetConfigName(".torctl")
	}

	_ = spfvpr.ReadInConfig()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
