// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package boltsource is a source.Table backed by a github.com/boltdb/bolt
// database: one bucket per column, keyed by big-endian row index. It is
// the durable counterpart to memsource, for tables too large to build in
// memory in a single process.
package boltsource

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/boltdb/bolt"

	"github.com/tabflow/tabflow/source"
	"github.com/tabflow/tabflow/tf"
)

var metaBucket = []byte("__tabflow_meta__")

// Table reads column data out of a bolt.DB opened read-only for the
// lifetime of the engine run. Use Writer to populate one.
type Table struct {
	db      *bolt.DB
	name    string
	numRows int64
	schema  []source.ColumnInfo
}

// Open opens an existing bolt database file written by Writer and returns
// a Table over it.
func Open(path, name string) (*Table, error) {
	db, err := bolt.Open(path, 0444, nil)
	if err != nil {
		return nil, tf.ErrSourceUnavailable.New(name, err)
	}

	t := &Table{db: db, name: name}
	err = db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta == nil {
			return fmt.Errorf("boltsource: %s missing metadata bucket", path)
		}
		if v := meta.Get([]byte("numRows")); v != nil {
			t.numRows = int64(binary.BigEndian.Uint64(v))
		}
		var cols []columnMeta
		if v := meta.Get([]byte("schema")); v != nil {
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&cols); err != nil {
				return err
			}
		}
		for _, c := range cols {
			t.schema = append(t.schema, source.ColumnInfo{Name: c.Name, Type: c.Type})
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *Table) Close() error { return t.db.Close() }

func (t *Table) Name() string                { return t.name }
func (t *Table) NumRows() int64              { return t.numRows }
func (t *Table) Schema() []source.ColumnInfo { return t.schema }

func (t *Table) Partition(nSlots int) []source.RowRange {
	if nSlots < 1 {
		nSlots = 1
	}
	ranges := make([]source.RowRange, 0, nSlots)
	chunk := t.numRows / int64(nSlots)
	if chunk == 0 {
		chunk = 1
	}
	var start int64
	for i := 0; i < nSlots && start < t.numRows; i++ {
		end := start + chunk
		if i == nSlots-1 || end > t.numRows {
			end = t.numRows
		}
		ranges = append(ranges, source.RowRange{Start: start, End: end})
		start = end
	}
	return ranges
}

func (t *Table) Cursor(slot int, column string) (source.Cursor, error) {
	var typ source.ColumnType
	found := false
	for _, c := range t.schema {
		if c.Name == column {
			typ, found = c.Type, true
			break
		}
	}
	if !found {
		return nil, &source.ColumnNotFoundError{Column: column}
	}
	// Bolt read transactions aren't safe to share across goroutines, so
	// each slot's cursor opens its own.
	tx, err := t.db.Begin(false)
	if err != nil {
		return nil, err
	}
	bucket := tx.Bucket([]byte(column))
	if bucket == nil {
		tx.Rollback()
		return nil, &source.ColumnNotFoundError{Column: column}
	}
	return &cursor{tx: tx, bucket: bucket, typ: typ, column: column}, nil
}

type cursor struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
	typ    source.ColumnType
	column string
	key    [8]byte
	value  []byte
}

func (c *cursor) Seek(row int64) error {
	binary.BigEndian.PutUint64(c.key[:], uint64(row))
	c.value = c.bucket.Get(c.key[:])
	if c.value == nil {
		return fmt.Errorf("boltsource: column %q missing row %d", c.column, row)
	}
	return nil
}

// Close rolls back the cursor's read transaction. The engine calls this
// once per cursor at the end of every Run; without it each Run would leak
// one open bolt transaction per (slot, column), blocking bolt's freelist
// reclamation indefinitely.
func (c *cursor) Close() error {
	return c.tx.Rollback()
}

func (c *cursor) Value() (interface{}, error) {
	switch c.typ {
	case source.TypeInt64:
		return int64(binary.BigEndian.Uint64(c.value)), nil
	case source.TypeFloat64:
		return math.Float64frombits(binary.BigEndian.Uint64(c.value)), nil
	case source.TypeBool:
		return c.value[0] != 0, nil
	case source.TypeVectorFloat64:
		var vals []float64
		if err := gob.NewDecoder(bytes.NewReader(c.value)).Decode(&vals); err != nil {
			return nil, err
		}
		return tf.NewArrayView(vals), nil
	default:
		return nil, fmt.Errorf("boltsource: unsupported column type %s", c.typ)
	}
}

var (
	_ source.Table        = (*Table)(nil)
	_ source.Cursor       = (*cursor)(nil)
	_ source.CursorCloser = (*cursor)(nil)
)

type columnMeta struct {
	Name string
	Type source.ColumnType
}

// Writer builds a bolt.DB file in the layout Open expects: one bucket per
// column, keyed by big-endian row index, plus a metadata bucket recording
// the schema and row count.
type Writer struct {
	db   *bolt.DB
	cols []columnMeta
	rows int64
}

// Create opens path for writing, truncating any existing contents.
func Create(path string) (*Writer, error) {
	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, err
	}
	return &Writer{db: db}, nil
}

// PutInt64Column writes an entire int64 column.
func (w *Writer) PutInt64Column(name string, data []int64) error {
	return w.putColumn(name, source.TypeInt64, int64(len(data)), func(b *bolt.Bucket) error {
		var key [8]byte
		var val [8]byte
		for i, v := range data {
			binary.BigEndian.PutUint64(key[:], uint64(i))
			binary.BigEndian.PutUint64(val[:], uint64(v))
			if err := b.Put(key[:], val[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutFloat64Column writes an entire float64 column.
func (w *Writer) PutFloat64Column(name string, data []float64) error {
	return w.putColumn(name, source.TypeFloat64, int64(len(data)), func(b *bolt.Bucket) error {
		var key [8]byte
		var val [8]byte
		for i, v := range data {
			binary.BigEndian.PutUint64(key[:], uint64(i))
			binary.BigEndian.PutUint64(val[:], math.Float64bits(v))
			if err := b.Put(key[:], val[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutVectorFloat64Column writes an entire vector<float64> column, gob
// encoding each row's slice individually.
func (w *Writer) PutVectorFloat64Column(name string, data [][]float64) error {
	return w.putColumn(name, source.TypeVectorFloat64, int64(len(data)), func(b *bolt.Bucket) error {
		var key [8]byte
		for i, v := range data {
			binary.BigEndian.PutUint64(key[:], uint64(i))
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(v); err != nil {
				return err
			}
			if err := b.Put(key[:], buf.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Writer) putColumn(name string, typ source.ColumnType, n int64, fill func(*bolt.Bucket) error) error {
	if w.rows == 0 {
		w.rows = n
	} else if w.rows != n {
		return fmt.Errorf("boltsource: column %q has %d rows, writer has %d", name, n, w.rows)
	}
	err := w.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		return fill(b)
	})
	if err != nil {
		return err
	}
	w.cols = append(w.cols, columnMeta{Name: name, Type: typ})
	return nil
}

// Close writes the metadata bucket and closes the database.
func (w *Writer) Close() error {
	err := w.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		var rows [8]byte
		binary.BigEndian.PutUint64(rows[:], uint64(w.rows))
		if err := meta.Put([]byte("numRows"), rows[:]); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(w.cols); err != nil {
			return err
		}
		return meta.Put([]byte("schema"), buf.Bytes())
	})
	if err != nil {
		w.db.Close()
		return err
	}
	return w.db.Close()
}
