package heightmap

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescr   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	npyFortran = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	npyShape   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// ReadNPY decodes a two-dimensional NumPy array (.npy, format 1.0 to 3.0)
// of little-endian float32, float64, int32 or int64 values into rows
func ReadNPY(r io.Reader) ([][]float64, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("failed to read npy magic: %w", err)
	}
	if !bytes.Equal(magic[:len(npyMagic)], npyMagic) {
		return nil, fmt.Errorf("not a npy file")
	}

	var headerLen int
	switch major := magic[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}

	descr, fortran, rows, cols, err := parseNPYHeader(string(header))
	if err != nil {
		return nil, err
	}

	read, err := npyReader(descr)
	if err != nil {
		return nil, err
	}

	values := make([]float64, rows*cols)
	for i := range values {
		v, err := read(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		values[i] = v
	}

	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			if fortran {
				out[i][j] = values[j*rows+i]
			} else {
				out[i][j] = values[i*cols+j]
			}
		}
	}
	return out, nil
}

func parseNPYHeader(header string) (descr string, fortran bool, rows, cols int, err error) {
	m := npyDescr.FindStringSubmatch(header)
	if m == nil {
		return "", false, 0, 0, fmt.Errorf("npy header has no descr")
	}
	descr = m[1]

	if m := npyFortran.FindStringSubmatch(header); m != nil {
		fortran = m[1] == "True"
	}

	m = npyShape.FindStringSubmatch(header)
	if m == nil {
		return "", false, 0, 0, fmt.Errorf("npy header has no shape")
	}
	var dims []int
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, convErr := strconv.Atoi(part)
		if convErr != nil {
			return "", false, 0, 0, fmt.Errorf("bad npy shape %q", m[1])
		}
		dims = append(dims, n)
	}
	if len(dims) != 2 {
		return "", false, 0, 0, fmt.Errorf("expected a 2D array, got shape (%s)", m[1])
	}
	return descr, fortran, dims[0], dims[1], nil
}

func npyReader(descr string) (func(io.Reader) (float64, error), error) {
	order := binary.ByteOrder(binary.LittleEndian)
	switch descr[:1] {
	case "<", "|", "=":
	case ">":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", descr)
	}

	buf := make([]byte, 8)
	switch descr[1:] {
	case "f8":
		return func(r io.Reader) (float64, error) {
			if _, err := io.ReadFull(r, buf[:8]); err != nil {
				return 0, err
			}
			return math.Float64frombits(order.Uint64(buf[:8])), nil
		}, nil
	case "f4":
		return func(r io.Reader) (float64, error) {
			if _, err := io.ReadFull(r, buf[:4]); err != nil {
				return 0, err
			}
			return float64(math.Float32frombits(order.Uint32(buf[:4]))), nil
		}, nil
	case "i8":
		return func(r io.Reader) (float64, error) {
			if _, err := io.ReadFull(r, buf[:8]); err != nil {
				return 0, err
			}
			return float64(int64(order.Uint64(buf[:8]))), nil
		}, nil
	case "i4":
		return func(r io.Reader) (float64, error) {
			if _, err := io.ReadFull(r, buf[:4]); err != nil {
				return 0, err
			}
			return float64(int32(order.Uint32(buf[:4]))), nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", descr)
	}
}

func loadNPY(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadNPY(file)
}
