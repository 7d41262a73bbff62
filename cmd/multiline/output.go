// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main // import "github.com/logmerge/multiline/cmd/multiline"

import (
	"bufio"
	"io"
	"sort"

	"github.com/valyala/fastjson"

	"github.com/logmerge/multiline/entry"
)

// encoder writes entries as JSON lines. Fields are written at the top level,
// in key order, followed by tags and optionally metadata.
type encoder struct {
	w            *bufio.Writer
	arena        fastjson.Arena
	buf          []byte
	emitMetadata bool
}

func newEncoder(w io.Writer, emitMetadata bool) *encoder {
	return &encoder{
		w:            bufio.NewWriter(w),
		emitMetadata: emitMetadata,
	}
}

func (enc *encoder) encode(e *entry.Entry) error {
	defer enc.arena.Reset()
	a := &enc.arena

	obj := a.NewObject()
	for _, k := range sortedKeys(e.Fields) {
		if k == tagsKey || k == metadataKey {
			continue
		}
		obj.Set(k, enc.value(e.Fields[k]))
	}
	if len(e.Tags) > 0 {
		tags := a.NewArray()
		for i, tag := range e.Tags {
			tags.SetArrayItem(i, a.NewString(tag))
		}
		obj.Set(tagsKey, tags)
	}
	if enc.emitMetadata && len(e.Metadata) > 0 {
		obj.Set(metadataKey, enc.value(e.Metadata))
	}

	enc.buf = obj.MarshalTo(enc.buf[:0])
	enc.buf = append(enc.buf, '\n')
	_, err := enc.w.Write(enc.buf)
	return err
}

func (enc *encoder) flush() error {
	return enc.w.Flush()
}

func (enc *encoder) value(v any) *fastjson.Value {
	a := &enc.arena
	switch typed := v.(type) {
	case nil:
		return a.NewNull()
	case string:
		return a.NewString(typed)
	case bool:
		if typed {
			return a.NewTrue()
		}
		return a.NewFalse()
	case map[string]any:
		obj := a.NewObject()
		for _, k := range sortedKeys(typed) {
			obj.Set(k, enc.value(typed[k]))
		}
		return obj
	case []any:
		arr := a.NewArray()
		for i, item := range typed {
			arr.SetArrayItem(i, enc.value(item))
		}
		return arr
	case []string:
		arr := a.NewArray()
		for i, item := range typed {
			arr.SetArrayItem(i, a.NewString(item))
		}
		return arr
	}

	if entry.KindOf(v) == entry.KindNumber {
		return a.NewNumberString(entry.Stringify(v))
	}
	return a.NewString(entry.Stringify(v))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
