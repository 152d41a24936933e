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
	"fmt"

	"fortio.org/safecast"
	"github.com/apache/thrift/lib/go/thrift"
	"github.com/cloudwego/syncopt/ir"
)

// The thrift binary form is described by this IDL:
//
//     struct Resource {
//         1: string name
//         2: i32    kind
//     }
//
//     struct Block {
//         1: string       name
//         2: list<string> succ
//         3: list<string> ops
//     }
//
//     struct Kernel {
//         1: string         name
//         2: list<Resource> resources
//         3: list<Block>    blocks
//     }
//

const (
	_MaxListSize = 1 << 20
)

// MarshalThrift encodes d with the thrift binary protocol.
func MarshalThrift(d *Desc) ([]byte, error) {
	mm := thrift.NewTMemoryBuffer()
	wr := &_ThriftWriter { p: thrift.NewTBinaryProtocolTransport(mm) }

	/* Kernel */
	wr.begin("Kernel")
	wr.str(1, "name", d.Name)

	/* Kernel.resources */
	wr.field(2, "resources", thrift.LIST)
	wr.list(thrift.STRUCT, len(d.Resources))
	for _, r := range d.Resources {
		wr.resource(r)
	}
	wr.endList()

	/* Kernel.blocks */
	wr.field(3, "blocks", thrift.LIST)
	wr.list(thrift.STRUCT, len(d.Blocks))
	for _, b := range d.Blocks {
		wr.block(b)
	}
	wr.endList()

	/* all done */
	if wr.end(); wr.err != nil {
		return nil, wr.err
	} else {
		return mm.Bytes(), nil
	}
}

type _ThriftWriter struct {
	p   thrift.TProtocol
	err error
}

func (self *_ThriftWriter) check(err error) {
	if self.err == nil {
		self.err = err
	}
}

func (self *_ThriftWriter) begin(name string) {
	self.check(self.p.WriteStructBegin(name))
}

func (self *_ThriftWriter) end() {
	self.check(self.p.WriteFieldStop())
	self.check(self.p.WriteStructEnd())
}

func (self *_ThriftWriter) field(id int16, name string, tag thrift.TType) {
	self.check(self.p.WriteFieldBegin(name, tag, id))
}

func (self *_ThriftWriter) list(tag thrift.TType, n int) {
	self.check(self.p.WriteListBegin(tag, n))
}

func (self *_ThriftWriter) endList() {
	self.check(self.p.WriteListEnd())
	self.check(self.p.WriteFieldEnd())
}

func (self *_ThriftWriter) str(id int16, name string, v string) {
	self.field(id, name, thrift.STRING)
	self.check(self.p.WriteString(v))
	self.check(self.p.WriteFieldEnd())
}

func (self *_ThriftWriter) strs(id int16, name string, v []string) {
	self.field(id, name, thrift.LIST)
	self.list(thrift.STRING, len(v))
	for _, s := range v {
		self.check(self.p.WriteString(s))
	}
	self.endList()
}

func (self *_ThriftWriter) resource(r ResourceDesc) {
	kind, ok := ir.ParseResourceKind(r.Kind)
	if !ok {
		self.check(fmt.Errorf("resource %s: unknown kind %q", r.Name, r.Kind))
	}

	/* Resource */
	self.begin("Resource")
	self.str(1, "name", r.Name)
	self.field(2, "kind", thrift.I32)
	self.check(self.p.WriteI32(int32(kind)))
	self.check(self.p.WriteFieldEnd())
	self.end()
}

func (self *_ThriftWriter) block(b BlockDesc) {
	self.begin("Block")
	self.str(1, "name", b.Name)
	self.strs(2, "succ", b.Succ)
	self.strs(3, "ops", b.Ops)
	self.end()
}

// UnmarshalThrift decodes the thrift binary form produced by MarshalThrift.
// Unknown fields are skipped.
func UnmarshalThrift(buf []byte) (*Desc, error) {
	mm := thrift.NewTMemoryBuffer()
	ret := new(Desc)

	/* load the buffer */
	if _, err := mm.Write(buf); err != nil {
		return nil, err
	}

	/* decode the kernel */
	p := thrift.NewTBinaryProtocolTransport(mm)
	err := readStruct(p, func(id int16, tag thrift.TType) (bool, error) {
		switch {
			case id == 1 && tag == thrift.STRING : return true, readString(p, &ret.Name)
			case id == 2 && tag == thrift.LIST   : return true, readList(p, thrift.STRUCT, func() error { return readResource(p, ret) })
			case id == 3 && tag == thrift.LIST   : return true, readList(p, thrift.STRUCT, func() error { return readBlock(p, ret) })
			default                              : return false, nil
		}
	})

	/* check for errors */
	if err != nil {
		return nil, fmt.Errorf("thrift: %w", err)
	} else {
		return ret, nil
	}
}

// readStruct reads every field of a struct, skipping the ones fn does not
// accept.
func readStruct(p thrift.TProtocol, fn func(id int16, tag thrift.TType) (bool, error)) error {
	if _, err := p.ReadStructBegin(); err != nil {
		return err
	}

	/* read every field */
	for {
		_, tag, id, err := p.ReadFieldBegin()
		if err != nil {
			return err
		}

		/* end of struct */
		if tag == thrift.STOP {
			break
		}

		/* decode or skip the field */
		if ok, err := fn(id, tag); err != nil {
			return err
		} else if !ok {
			if err = p.Skip(tag); err != nil {
				return err
			}
		}

		/* end of field */
		if err = p.ReadFieldEnd(); err != nil {
			return err
		}
	}

	/* end of struct */
	return p.ReadStructEnd()
}

func readString(p thrift.TProtocol, v *string) (err error) {
	*v, err = p.ReadString()
	return
}

func readList(p thrift.TProtocol, elem thrift.TType, fn func() error) error {
	tag, size, err := p.ReadListBegin()
	if err != nil {
		return err
	}

	/* check the element type */
	if tag != elem {
		return fmt.Errorf("unexpected list element type %d", tag)
	}

	/* check the list size */
	n, err := safecast.Conv[uint32](size)
	if err != nil || n > _MaxListSize {
		return fmt.Errorf("invalid list size %d", size)
	}

	/* read every element */
	for i := uint32(0); i < n; i++ {
		if err = fn(); err != nil {
			return err
		}
	}
	return p.ReadListEnd()
}

func readResource(p thrift.TProtocol, d *Desc) error {
	var r ResourceDesc
	err := readStruct(p, func(id int16, tag thrift.TType) (bool, error) {
		switch {
			case id == 1 && tag == thrift.STRING : return true, readString(p, &r.Name)
			case id == 2 && tag == thrift.I32    : return true, readKind(p, &r.Kind)
			default                              : return false, nil
		}
	})
	if err == nil {
		d.Resources = append(d.Resources, r)
	}
	return err
}

func readKind(p thrift.TProtocol, v *string) error {
	val, err := p.ReadI32()
	if err != nil {
		return err
	}

	/* must be a valid resource kind */
	kind, err := safecast.Conv[uint8](val)
	if err != nil || ir.ResourceKind(kind) > ir.ResourceReadOnly {
		return fmt.Errorf("invalid resource kind %d", val)
	}

	/* store its name */
	*v = ir.ResourceKind(kind).String()
	return nil
}

func readBlock(p thrift.TProtocol, d *Desc) error {
	b := BlockDesc { Ops: []string{} }
	err := readStruct(p, func(id int16, tag thrift.TType) (bool, error) {
		switch {
			case id == 1 && tag == thrift.STRING : return true, readString(p, &b.Name)
			case id == 2 && tag == thrift.LIST   : return true, readStrings(p, &b.Succ)
			case id == 3 && tag == thrift.LIST   : return true, readStrings(p, &b.Ops)
			default                              : return false, nil
		}
	})
	if err == nil {
		d.Blocks = append(d.Blocks, b)
	}
	return err
}

func readStrings(p thrift.TProtocol, v *[]string) error {
	return readList(p, thrift.STRING, func() error {
		s, err := p.ReadString()
		*v = append(*v, s)
		return err
	})
}
