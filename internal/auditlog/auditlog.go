// Package auditlog keeps a CSV trail of committed ledger changes.
package auditlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/events"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	EventID   string
	Type      string
	OrgID     int64
	EntityID  int64
	Amount    decimal.Decimal
	Details   string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,event_id,type,org_id,entity_id,amount,details"

// FileName is the log file created inside the audit directory.
const FileName = "audit-log.csv"

const (
	numFields    = 7
	colTimestamp = 0
	colEventID   = 1
	colType      = 2
	colOrgID     = 3
	colEntityID  = 4
	colAmount    = 5
	colDetails   = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colEventID] = e.EventID
	row[colType] = e.Type
	row[colOrgID] = strconv.FormatInt(e.OrgID, 10)
	row[colEntityID] = strconv.FormatInt(e.EntityID, 10)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	orgID, err := strconv.ParseInt(record[colOrgID], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing org id %q: %w", record[colOrgID], err)
	}
	entityID, err := strconv.ParseInt(record[colEntityID], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing entity id %q: %w", record[colEntityID], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return Entry{
		Timestamp: ts,
		EventID:   record[colEventID],
		Type:      record[colType],
		OrgID:     orgID,
		EntityID:  entityID,
		Amount:    amount,
		Details:   record[colDetails],
	}, nil
}

// FromEvent flattens an event into a log entry. Payload keys are written
// sorted as "key=value" pairs separated by semicolons.
func FromEvent(e events.Event) Entry {
	keys := make([]string, 0, len(e.Payload))
	for k := range e.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + e.Payload[k]
	}

	return Entry{
		Timestamp: e.OccurredAt,
		EventID:   e.ID.String(),
		Type:      string(e.Type),
		OrgID:     e.OrgID,
		EntityID:  e.EntityID,
		Amount:    e.Amount,
		Details:   strings.Join(pairs, ";"),
	}
}

// Append writes entries to <dir>/audit-log.csv, creating the file and
// header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating audit dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/audit-log.csv. A missing file reads
// as empty.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Sink appends every published event to the audit log in Dir.
type Sink struct {
	Dir string

	mu sync.Mutex
}

// NewSink returns a Sink writing under dir.
func NewSink(dir string) *Sink {
	return &Sink{Dir: dir}
}

func (s *Sink) Publish(_ context.Context, e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Append(s.Dir, []Entry{FromEvent(e)})
}
