package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"
)

// buildNPY builds a version 1.0 .npy byte stream for a 2-D float32 matrix.
func buildNPY(t *testing.T, matrix [][]float32) []byte {
	t.Helper()
	rows := len(matrix)
	cols := 0
	if rows > 0 {
		cols = len(matrix[0])
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)
	// Pad so magic+version+len+header is a multiple of 64, newline-terminated.
	total := 8 + 2 + len(header) + 1
	pad := (64 - total%64) % 64
	header = header + string(bytes.Repeat([]byte{' '}, pad)) + "\n"

	var buf bytes.Buffer
	buf.Write([]byte("\x93NUMPY"))
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	for _, row := range matrix {
		for _, v := range row {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
		}
	}
	return buf.Bytes()
}

func TestReadMatrix(t *testing.T) {
	want := [][]float32{
		{1, 2, 3},
		{4, 5, 6},
	}
	got, err := ReadMatrix(bytes.NewReader(buildNPY(t, want)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || len(got[0]) != 3 {
		t.Fatalf("shape = %dx%d", len(got), len(got[0]))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("got[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestReadMatrix_Float64(t *testing.T) {
	header := "{'descr': '<f8', 'fortran_order': False, 'shape': (1, 2), }\n"
	var buf bytes.Buffer
	buf.Write([]byte("\x93NUMPY"))
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(0.5))
	_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(-1.25))

	got, err := ReadMatrix(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got[0][0] != 0.5 || got[0][1] != -1.25 {
		t.Errorf("row = %v", got[0])
	}
}

func TestReadMatrix_BadMagic(t *testing.T) {
	if _, err := ReadMatrix(bytes.NewReader([]byte("not a npy file at all"))); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestReadMatrix_Rejects1D(t *testing.T) {
	header := "{'descr': '<f4', 'fortran_order': False, 'shape': (3,), }\n"
	var buf bytes.Buffer
	buf.Write([]byte("\x93NUMPY"))
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	if _, err := ReadMatrix(&buf); err == nil {
		t.Error("expected error for 1-D shape")
	}
}

func TestReadMatrix_RejectsFortranOrder(t *testing.T) {
	header := "{'descr': '<f4', 'fortran_order': True, 'shape': (1, 1), }\n"
	var buf bytes.Buffer
	buf.Write([]byte("\x93NUMPY"))
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	if _, err := ReadMatrix(&buf); err == nil {
		t.Error("expected error for fortran order")
	}
}

func TestReadMatrix_TruncatedBody(t *testing.T) {
	data := buildNPY(t, [][]float32{{1, 2}, {3, 4}})
	if _, err := ReadMatrix(bytes.NewReader(data[:len(data)-4])); err == nil {
		t.Error("expected error for truncated body")
	}
}
