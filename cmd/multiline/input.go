// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main // import "github.com/logmerge/multiline/cmd/multiline"

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/logmerge/multiline/entry"
)

const (
	tagsKey     = "tags"
	metadataKey = entry.MetadataPrefix

	maxLineSize = 4 * 1024 * 1024
)

// openInput opens a file for reading, decompressing .gz and .zst files. An
// empty name or "-" reads from stdin.
func openInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(stdin), nil
	}

	f, err := os.Open(filepath.Clean(name))
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(name) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("%s: %w", name, err), f.Close())
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("%s: %w", name, err), f.Close())
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zstdCloser{zr}, f}}, nil
	}
	return f, nil
}

type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (r *stackedReader) Close() error {
	var errs error
	for _, c := range r.closers {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}

type zstdCloser struct {
	d *zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

// decoder turns input lines into entries. A line holding a JSON object has
// its keys mapped onto fields, except "tags" and "@metadata". Any other line,
// including one that only opens an object, becomes the message of a new entry.
type decoder struct {
	parser fastjson.Parser
	logger *zap.Logger
}

func newDecoder(logger *zap.Logger) *decoder {
	return &decoder{logger: logger}
}

func (d *decoder) decode(line []byte) (*entry.Entry, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return entry.NewWithMessage(string(line)), nil
	}

	v, err := d.parser.ParseBytes(trimmed)
	if err != nil {
		d.logger.Debug("Line is not a complete JSON object, keeping it as a message", zap.Error(err))
		return entry.NewWithMessage(string(line)), nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil, err
	}

	e := entry.New()
	var visitErr error
	obj.Visit(func(key []byte, val *fastjson.Value) {
		switch string(key) {
		case tagsKey:
			if val.Type() != fastjson.TypeArray {
				visitErr = multierr.Append(visitErr, fmt.Errorf("%s must be an array, got %s", tagsKey, val.Type()))
				return
			}
			for _, item := range val.GetArray() {
				if tag, ok := entry.Text(toValue(item)); ok {
					e.AddTag(tag)
				}
			}
		case metadataKey:
			meta, ok := toValue(val).(map[string]any)
			if !ok {
				visitErr = multierr.Append(visitErr, fmt.Errorf("%s must be an object, got %s", metadataKey, val.Type()))
				return
			}
			for k, mv := range meta {
				e.AddMetadata(k, mv)
			}
		default:
			e.AddField(string(key), toValue(val))
		}
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return e, nil
}

func toValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		obj := v.GetObject()
		m := make(map[string]any, obj.Len())
		obj.Visit(func(key []byte, val *fastjson.Value) {
			m[string(key)] = toValue(val)
		})
		return m
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, toValue(item))
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return toNumber(v)
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

// toNumber keeps integers exact. Integers beyond int64 keep their text.
func toNumber(v *fastjson.Value) any {
	raw := v.String()
	if strings.ContainsAny(raw, ".eE") {
		return v.GetFloat64()
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return json.Number(raw)
}

// readEntries decodes every line of r and hands the entries to emit, in order.
// Undecodable lines are logged through onError and skipped.
func readEntries(ctx context.Context, r io.Reader, logger *zap.Logger, emit func(*entry.Entry) error, onError func(lineNo int, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	d := newDecoder(logger)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++

		e, err := d.decode(scanner.Bytes())
		if err != nil {
			onError(lineNo, err)
			continue
		}
		if err := emit(e); err != nil {
			return err
		}
	}
	return scanner.Err()
}
