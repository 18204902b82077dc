package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/scubot/tidechart/pkg/station"
)

// File keeps the stations in a JSON lines file, one station per line. Put appends and
// syncs a single line. OpenFile drops a torn last line left by a crash and compacts the
// file through a temporary file and a rename.
type File struct {
	path string

	mu  sync.Mutex
	mem *Memory
}

// OpenFile loads path, creating its directory if needed. A missing file is an empty
// store.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	f := &File{path: path, mem: NewMemory()}

	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read station store %s: %w", path, err)
	}

	stations, err := decodeLines(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse station store %s: %w", path, err)
	}
	for _, st := range stations {
		if err := f.mem.Put(context.Background(), st); err != nil {
			return nil, fmt.Errorf("station store %s: %w", path, err)
		}
	}

	all, _ := f.mem.All(context.Background())
	if err := f.compact(all); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeLines(data []byte) ([]station.Station, error) {
	var stations []station.Station
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var st station.Station
		if err := json.Unmarshal(line, &st); err != nil {
			// Only the final line can be torn, since it has no newline yet.
			if i == len(lines)-1 {
				break
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		stations = append(stations, st)
	}
	return stations, nil
}

func (f *File) Get(ctx context.Context, id string) (station.Station, bool, error) {
	return f.mem.Get(ctx, id)
}

func (f *File) All(ctx context.Context) ([]station.Station, error) {
	return f.mem.All(ctx)
}

func (f *File) Put(ctx context.Context, st station.Station) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("refusing to store station: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok, _ := f.mem.Get(ctx, st.ID); ok {
		return nil
	}

	if err := f.appendLine(st); err != nil {
		// Rewrite what is known so a partial line cannot end up mid-file.
		all, _ := f.mem.All(ctx)
		_ = f.compact(all)
		return err
	}
	return f.mem.Put(ctx, st)
}

func (f *File) appendLine(st station.Station) error {
	line, err := json.Marshal(st)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	// #nosec G304 -- path comes from configuration
	out, err := os.OpenFile(f.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("failed to open station store: %w", err)
	}
	if _, err := out.Write(line); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write station store: %w", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to sync station store: %w", err)
	}
	return out.Close()
}

// compact replaces the file with exactly stations.
func (f *File) compact(stations []station.Station) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, st := range stations {
		if err := enc.Encode(st); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".stations-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to write station store: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write station store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync station store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write station store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace station store: %w", err)
	}
	return nil
}
