package terrain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Tile holds the collision flags of one tile code.
type Tile struct {
	Walkable bool
}

// Tileset maps tile codes to their flags.
type Tileset map[int]Tile

// ParseTileset reads "code walkable" pairs, one per line. Blank lines and
// lines starting with '#' are skipped.
func ParseTileset(r io.Reader) (Tileset, error) {
	ts := make(Tileset)
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("tileset line %d: want \"code walkable\", got %q", line, text)
		}
		code, err := strconv.Atoi(fields[0])
		if err != nil || code < 0 {
			return nil, fmt.Errorf("tileset line %d: %w: %q", line, ErrBadCode, fields[0])
		}
		walkable, err := strconv.ParseBool(fields[1])
		if err != nil {
			return nil, fmt.Errorf("tileset line %d: %w", line, err)
		}
		ts[code] = Tile{Walkable: walkable}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ts, nil
}

// LoadTileset reads a tileset file.
func LoadTileset(path string) (Tileset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTileset(f)
}
