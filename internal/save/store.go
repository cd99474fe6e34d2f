// Package save persists game snapshots as JSON slot files on disk.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/samdwyer/emberfall/internal/session"
)

// SlotCount is the number of save slots, numbered 1..SlotCount.
const SlotCount = 3

var (
	ErrBadSlot   = errors.New("save slot out of range")
	ErrEmptySlot = errors.New("save slot is empty")
)

// SlotInfo describes one slot for the load menu.
type SlotInfo struct {
	Slot     int
	Occupied bool
	SavedAt  time.Time
}

// Store reads and writes snapshots under a single directory. It satisfies
// session.Saver. Writes go through a temp file and rename, so a crash
// mid-save never corrupts an existing slot.
type Store struct {
	dir string
	log *logrus.Entry
}

// NewStore opens (creating if needed) a save directory.
func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Store{dir: dir, log: logger.WithField("component", "save")}, nil
}

func (s *Store) path(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("slot%d.json", slot))
}

func checkSlot(slot int) error {
	if slot < 1 || slot > SlotCount {
		return fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}
	return nil
}

// Save writes a snapshot into a slot, replacing any previous save there.
func (s *Store) Save(slot int, snap *session.GameSnapshot) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "slot*.tmp")
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.log.WithField("slot", slot).Info("game saved")
	return nil
}

// Load reads the snapshot in a slot. An empty slot returns ErrEmptySlot.
func (s *Store) Load(slot int) (*session.GameSnapshot, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d", ErrEmptySlot, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap session.GameSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	s.log.WithField("slot", slot).Info("game loaded")
	return &snap, nil
}

// Slots reports the state of every slot for the load menu.
func (s *Store) Slots() []SlotInfo {
	out := make([]SlotInfo, 0, SlotCount)
	for slot := 1; slot <= SlotCount; slot++ {
		info := SlotInfo{Slot: slot}
		if snap, err := s.Load(slot); err == nil {
			info.Occupied = true
			info.SavedAt = snap.SavedAt
		}
		out = append(out, info)
	}
	return out
}
