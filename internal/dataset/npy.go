package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
)

// NumPy .npy reader for the embedding matrix artifact. Format reference:
// a magic string, a version pair, a padded header containing a Python dict
// literal with descr/fortran_order/shape, then the raw array body.

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescrRe   = regexp.MustCompile(`'descr':\s*'([^']+)'`)
	npyFortranRe = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	npyShapeRe   = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+)\s*,?\)`)
)

// ReadMatrixFile opens path and reads a 2-D float matrix from it.
func ReadMatrixFile(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open embeddings file: %w", err)
	}
	defer f.Close()
	matrix, err := ReadMatrix(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return matrix, nil
}

// ReadMatrix parses a .npy stream containing a 2-D little-endian float32 or
// float64 array in C order and returns its rows as float32 slices. Other
// layouts are rejected; the embedding artifacts are not produced in them.
func ReadMatrix(r io.Reader) ([][]float32, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read npy preamble: %w", err)
	}
	for i, b := range npyMagic {
		if header[i] != b {
			return nil, fmt.Errorf("not a npy file: bad magic")
		}
	}
	major, minor := header[6], header[7]

	var headerLen int
	switch major {
	case 1:
		var l uint16
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(l)
	case 2, 3:
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(l)
	default:
		return nil, fmt.Errorf("unsupported npy version %d.%d", major, minor)
	}

	dictBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, dictBytes); err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}
	dict := string(dictBytes)

	descrMatch := npyDescrRe.FindStringSubmatch(dict)
	if descrMatch == nil {
		return nil, fmt.Errorf("npy header missing descr: %q", dict)
	}
	descr := descrMatch[1]
	var itemSize int
	switch descr {
	case "<f4":
		itemSize = 4
	case "<f8":
		itemSize = 8
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q (want <f4 or <f8)", descr)
	}

	if m := npyFortranRe.FindStringSubmatch(dict); m == nil || m[1] != "False" {
		return nil, fmt.Errorf("unsupported npy layout: fortran order or missing flag")
	}

	shapeMatch := npyShapeRe.FindStringSubmatch(dict)
	if shapeMatch == nil {
		return nil, fmt.Errorf("npy shape is not 2-D: %q", dict)
	}
	rows, err := strconv.Atoi(shapeMatch[1])
	if err != nil {
		return nil, fmt.Errorf("parse npy rows: %w", err)
	}
	cols, err := strconv.Atoi(shapeMatch[2])
	if err != nil {
		return nil, fmt.Errorf("parse npy cols: %w", err)
	}
	if cols <= 0 {
		return nil, fmt.Errorf("npy matrix has no columns")
	}

	matrix := make([][]float32, rows)
	buf := make([]byte, cols*itemSize)
	for i := 0; i < rows; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read npy row %d: %w", i, err)
		}
		row := make([]float32, cols)
		for j := 0; j < cols; j++ {
			switch itemSize {
			case 4:
				row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
			case 8:
				row[j] = float32(math.Float64frombits(binary.LittleEndian.Uint64(buf[j*8:])))
			}
		}
		matrix[i] = row
	}
	return matrix, nil
}
