/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package kernel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is an interchange form of kernels.
type Format uint8

const (
	FormatTOML Format = iota
	FormatMsgpack
	FormatThrift
)

var _FormatNames = [...]string {
	FormatTOML    : "toml",
	FormatMsgpack : "msgpack",
	FormatThrift  : "thrift",
}

func (self Format) String() string {
	if int(self) < len(_FormatNames) {
		return _FormatNames[self]
	} else {
		return fmt.Sprintf("Format(%d)", uint8(self))
	}
}

// ParseFormat converts a format name, or a file extension with its dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
		case "toml"            : return FormatTOML, nil
		case "msgpack", "mpk"  : return FormatMsgpack, nil
		case "thrift", "tbin"  : return FormatThrift, nil
		default                : return 0, fmt.Errorf("unknown kernel format %q", s)
	}
}

// FormatOf guesses the format of a file from its extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Decode reads a kernel description in the given format.
func Decode(r io.Reader, f Format) (*Desc, error) {
	var err error
	var buf []byte
	ret := new(Desc)

	/* check for the format */
	switch f {
		case FormatTOML: {
			_, err = toml.NewDecoder(r).Decode(ret)
		}

		case FormatMsgpack: {
			err = msgpack.NewDecoder(r).Decode(ret)
		}

		case FormatThrift: {
			if buf, err = io.ReadAll(r); err == nil {
				ret, err = UnmarshalThrift(buf)
			}
		}

		default: {
			err = fmt.Errorf("unknown kernel format %d", f)
		}
	}

	/* check for errors */
	if err != nil {
		return nil, err
	} else {
		return ret, nil
	}
}

// Encode writes a kernel description in the given format.
func Encode(w io.Writer, d *Desc, f Format) error {
	switch f {
		case FormatTOML: {
			return toml.NewEncoder(w).Encode(d)
		}

		case FormatMsgpack: {
			return msgpack.NewEncoder(w).Encode(d)
		}

		case FormatThrift: {
			if buf, err := MarshalThrift(d); err != nil {
				return err
			} else {
				_, err = w.Write(buf)
				return err
			}
		}

		default: {
			return fmt.Errorf("unknown kernel format %d", f)
		}
	}
}

// LoadFile reads a kernel file, guessing its format from the extension.
func LoadFile(path string) (*Desc, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	/* open the file */
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	/* decode the kernel */
	defer fp.Close()
	ret, err := Decode(fp, f)

	/* check for errors */
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	} else {
		return ret, nil
	}
}

// SaveFile writes a kernel file, guessing its format from the extension.
func SaveFile(path string, d *Desc) error {
	f, err := FormatOf(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	/* encode into memory first, so a failure leaves no partial file */
	buf := bytes.NewBuffer(nil)
	if err = Encode(buf, d, f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	/* write the file */
	return os.WriteFile(path, buf.Bytes(), 0644)
}
