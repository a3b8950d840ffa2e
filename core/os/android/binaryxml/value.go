// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package binaryxml

import (
	"fmt"
	"math"

	"github.com/google/apkpatch/core/data/binary"
)

const valueSize = 8

type typedValue interface {
	fmt.Stringer
	valueType() ValueType
	encode(w binary.Writer)
}

type valIntDec int32
type valIntHex uint32
type valReference uint32
type valStringID stringPoolRef
type valNull uint32
type valIntBoolean bool
type valFloat float32

// valRaw holds the types that are carried through without interpretation.
type valRaw struct {
	ty   ValueType
	data uint32
}

func (v valIntDec) String() string     { return fmt.Sprintf("%d", int32(v)) }
func (v valIntHex) String() string     { return fmt.Sprintf("0x%x", uint32(v)) }
func (v valReference) String() string  { return fmt.Sprintf("@0x%x", uint32(v)) }
func (v valStringID) String() string   { return fmt.Sprintf("@0x%x", stringPoolRef(v).stringPoolIndex()) }
func (v valFloat) String() string      { return fmt.Sprintf("%f", float32(v)) }
func (v valIntBoolean) String() string { return fmt.Sprintf("%t", bool(v)) }
func (v valRaw) String() string        { return fmt.Sprintf("%v(0x%x)", v.ty, v.data) }
func (v valNull) String() string {
	return "null" /* Not actually sure about this: 0 -> undefined, !=0 -> empty */
}

func (valIntDec) valueType() ValueType     { return TypeIntDec }
func (valIntHex) valueType() ValueType     { return TypeIntHex }
func (valReference) valueType() ValueType  { return TypeReference }
func (valStringID) valueType() ValueType   { return TypeString }
func (valFloat) valueType() ValueType      { return TypeFloat }
func (valIntBoolean) valueType() ValueType { return TypeIntBoolean }
func (valNull) valueType() ValueType       { return TypeNull }
func (v valRaw) valueType() ValueType      { return v.ty }

func (v valIntDec) encode(w binary.Writer) {
	writeTypedValueHeader(w, TypeIntDec)
	w.Int32(int32(v))
}
func (v valIntHex) encode(w binary.Writer) {
	writeTypedValueHeader(w, TypeIntHex)
	w.Uint32(uint32(v))
}
func (v valReference) encode(w binary.Writer) {
	writeTypedValueHeader(w, TypeReference)
	w.Uint32(uint32(v))
}
func (v valStringID) encode(w binary.Writer) {
	writeTypedValueHeader(w, TypeString)
	w.Uint32(stringPoolRef(v).stringPoolIndex())
}
func (v valFloat) encode(w binary.Writer) {
	writeTypedValueHeader(w, TypeFloat)
	w.Float32(float32(v))
}
func (v valIntBoolean) encode(w binary.Writer) {
	writeTypedValueHeader(w, TypeIntBoolean)
	if bool(v) {
		w.Uint32(0xFFFFFFFF)
	} else {
		w.Uint32(0)
	}
}
func (v valNull) encode(w binary.Writer) {
	writeTypedValueHeader(w, TypeNull)
	w.Uint32(uint32(v))
}
func (v valRaw) encode(w binary.Writer) {
	writeTypedValueHeader(w, v.ty)
	w.Uint32(v.data)
}

func writeTypedValueHeader(w binary.Writer, ty ValueType) {
	w.Uint16(valueSize)
	w.Uint8(0)
	w.Uint8(uint8(ty))
}

func decodeValue(r binary.Reader, xml *xmlTree) (typedValue, error) {
	size := r.Uint16()
	if err := r.Error(); err != nil {
		return nil, err
	}
	if size != valueSize {
		return nil, malformed("Value size was not as expected. Got %d, expected %d",
			size, valueSize)
	}
	res0 := r.Uint8()
	if res0 != 0 {
		return nil, malformed("res0 was %d, expected 0", res0)
	}
	ty := ValueType(r.Uint8())
	switch ty {
	case TypeIntDec:
		return valIntDec(r.Int32()), nil
	case TypeIntHex:
		return valIntHex(r.Uint32()), nil
	case TypeReference:
		return valReference(r.Uint32()), nil
	case TypeString:
		return valStringID(xml.decodeString(r)), nil
	case TypeFloat:
		return valFloat(r.Float32()), nil
	case TypeIntBoolean:
		return valIntBoolean(r.Uint32() != 0), nil
	case TypeNull:
		return valNull(r.Uint32()), nil
	default:
		return valRaw{ty, r.Uint32()}, nil
	}
}

// ValueType identifies how the data of a Value is interpreted.
type ValueType uint8

// The value types of ResourceTypes.h.
const (
	TypeNull             ValueType = 0x00
	TypeReference        ValueType = 0x01
	TypeAttribute        ValueType = 0x02
	TypeString           ValueType = 0x03
	TypeFloat            ValueType = 0x04
	TypeDimension        ValueType = 0x05
	TypeFraction         ValueType = 0x06
	TypeDynamicReference ValueType = 0x07
	TypeIntDec           ValueType = 0x10
	TypeIntHex           ValueType = 0x11
	TypeIntBoolean       ValueType = 0x12
	TypeIntColorARGB8    ValueType = 0x1c
	TypeIntColorRGB8     ValueType = 0x1d
	TypeIntColorARGB4    ValueType = 0x1e
	TypeIntColorRGB4     ValueType = 0x1f
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeReference:
		return "Reference"
	case TypeAttribute:
		return "Attribute"
	case TypeString:
		return "String"
	case TypeFloat:
		return "Float"
	case TypeDimension:
		return "Dimension"
	case TypeFraction:
		return "Fraction"
	case TypeDynamicReference:
		return "DynamicReference"
	case TypeIntDec:
		return "IntDec"
	case TypeIntHex:
		return "IntHex"
	case TypeIntBoolean:
		return "IntBoolean"
	case TypeIntColorARGB8:
		return "IntColorARGB8"
	case TypeIntColorRGB8:
		return "IntColorRGB8"
	case TypeIntColorARGB4:
		return "IntColorARGB4"
	case TypeIntColorRGB4:
		return "IntColorRGB4"
	default:
		return fmt.Sprintf("type<%d>", t)
	}
}

// Value is the typed value of an attribute.
type Value struct {
	Type ValueType
	// Data is the 32 bit payload for every type except TypeString.
	Data uint32
	// Text is the string of a TypeString value.
	Text string
}

// StringValue returns a TypeString Value holding s.
func StringValue(s string) Value { return Value{Type: TypeString, Text: s} }

// IntValue returns a TypeIntDec Value holding i.
func IntValue(i int32) Value { return Value{Type: TypeIntDec, Data: uint32(i)} }

// BoolValue returns a TypeIntBoolean Value holding b.
func BoolValue(b bool) Value {
	if b {
		return Value{Type: TypeIntBoolean, Data: 0xffffffff}
	}
	return Value{Type: TypeIntBoolean}
}

// ReferenceValue returns a TypeReference Value to the resource id.
func ReferenceValue(id uint32) Value { return Value{Type: TypeReference, Data: id} }

// Bool returns true if the value is a true TypeIntBoolean.
func (v Value) Bool() bool { return v.Type == TypeIntBoolean && v.Data != 0 }

// Equal returns true if v and o hold the same type and data.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	if v.Type == TypeString {
		return v.Text == o.Text
	}
	if v.Type == TypeIntBoolean {
		return v.Bool() == o.Bool()
	}
	return v.Data == o.Data
}

func (v Value) String() string {
	if v.Type == TypeString {
		return v.Text
	}
	return v.typed(nil).String()
}

// typed returns the encodable form of v. String values are interned into x's
// pool, so x may only be nil for non-string values.
func (v Value) typed(x *xmlTree) typedValue {
	switch v.Type {
	case TypeIntDec:
		return valIntDec(int32(v.Data))
	case TypeIntHex:
		return valIntHex(v.Data)
	case TypeReference:
		return valReference(v.Data)
	case TypeString:
		return valStringID(x.strings.ref(v.Text))
	case TypeFloat:
		return valFloat(math.Float32frombits(v.Data))
	case TypeIntBoolean:
		return valIntBoolean(v.Data != 0)
	case TypeNull:
		return valNull(v.Data)
	default:
		return valRaw{v.Type, v.Data}
	}
}

// valueOf returns the exported form of tv.
func valueOf(tv typedValue) Value {
	switch tv := tv.(type) {
	case valIntDec:
		return IntValue(int32(tv))
	case valIntHex:
		return Value{Type: TypeIntHex, Data: uint32(tv)}
	case valReference:
		return ReferenceValue(uint32(tv))
	case valStringID:
		return StringValue(stringPoolRef(tv).get())
	case valFloat:
		return Value{Type: TypeFloat, Data: math.Float32bits(float32(tv))}
	case valIntBoolean:
		return BoolValue(bool(tv))
	case valNull:
		return Value{Type: TypeNull, Data: uint32(tv)}
	case valRaw:
		return Value{Type: tv.ty, Data: tv.data}
	}
	return Value{}
}
