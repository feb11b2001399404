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
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/nabbar/tor-control/reply"
)

// keyValuesOf splits a GETINFO/GETCONF ReplyGroup's replies into a
// key/value map. Each reply's Message is "key=value" (value possibly
// quoted); a reply carrying a dot-stuffed Body (e.g. "config/names")
// contributes its body verbatim instead.
func keyValuesOf(group *reply.ReplyGroup) map[string]string {
	out := make(map[string]string)
	for _, r := range group.Replies {
		key, val, found := strings.Cut(r.Message, "=")
		if !found {
			continue
		}
		if r.Body != "" {
			out[key] = r.Body
		} else {
			out[key] = strings.Trim(val, `"`)
		}
	}
	return out
}

// decodeInto decodes a GETINFO/GETCONF ReplyGroup's key/value pairs into
// dst, the same weakly-typed-input approach viper itself uses internally
// to populate config structs from loosely-typed sources.
func decodeInto(group *reply.ReplyGroup, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	return dec.Decode(keyValuesOf(group))
}
