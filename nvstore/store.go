// Package nvstore keeps the most recent application record in one flash page
// as an append-only log.
//
// Layout: [size:1 word][payload: size/4 words], repeated from the page start.
// An erased word (0xFFFFFFFF) at a record boundary marks the start of free
// space. A record is only returned if its size word equals the configured
// record size. No checksum protects payload words: a bit flip inside the
// payload goes undetected.
//
// Write, ReadLast and Initialize must not be called from interrupt context;
// they poll the flash controller until it reports completion.
package nvstore

import (
	"context"
	"log/slog"
	"time"

	"indicator-go/errcode"
	"indicator-go/platform"
	"indicator-go/x/mathx"
)

const (
	wordSize = platform.WordSize
	sentinel = platform.Erased

	defaultPollTimeout = 100 * time.Millisecond
)

type Stats struct {
	Writes     uint32
	Erases     uint32
	Recoveries uint32 // successful ReadLast calls
	Failures   uint32
}

type Store struct {
	flash platform.FlashRegion
	log   *slog.Logger

	pollTimeout  time.Duration
	pollInterval time.Duration

	recordSize  uint32 // payload bytes, multiple of wordSize; 0 until Initialize
	cursor      uint32 // next free byte offset
	eraseNeeded bool

	stats Stats
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPollTimeout bounds the wait for each write/erase completion.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollTimeout = d
		}
	}
}

// WithPollInterval sleeps between completion polls; 0 busy-polls.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) { s.pollInterval = d }
}

func New(region platform.FlashRegion, opts ...Option) *Store {
	s := &Store{
		flash:       region,
		log:         slog.Default(),
		pollTimeout: defaultPollTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize fixes the payload size in bytes and rewinds the cursor to the
// page start.
func (s *Store) Initialize(recordSize uint32) error {
	if recordSize == 0 || recordSize%wordSize != 0 || recordSize == sentinel {
		return &errcode.E{C: errcode.InvalidParams, Op: "nvstore.Initialize", Msg: "record size must be a non-zero multiple of the word size"}
	}
	if wordSize+recordSize > s.flash.Size() {
		return &errcode.E{C: errcode.InvalidParams, Op: "nvstore.Initialize", Msg: "record does not fit the page"}
	}
	s.recordSize = recordSize
	s.cursor = 0
	s.eraseNeeded = false
	return nil
}

// RecordSize returns the configured payload size in bytes.
func (s *Store) RecordSize() uint32 { return s.recordSize }

// Stride is the footprint of one record including its size word.
func (s *Store) Stride() uint32 { return wordSize + s.recordSize }

func (s *Store) Cursor() uint32    { return s.cursor }
func (s *Store) EraseNeeded() bool { return s.eraseNeeded }
func (s *Store) Stats() Stats      { return s.stats }

// ReadLast copies the payload of the newest record into buf and returns the
// number of bytes read. With no record it returns (0, errcode.NotFound); when
// the newest record has a foreign size it returns (0, errcode.SizeMismatch)
// and schedules an erase before the next write.
func (s *Store) ReadLast(buf []uint32) (int, error) {
	if s.recordSize == 0 {
		return 0, errcode.NotReady
	}
	words := s.recordSize / wordSize
	if uint32(len(buf)) < words {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "nvstore.ReadLast", Msg: "buffer shorter than record"}
	}

	last, found, ok, err := s.scan()
	if err != nil {
		return 0, s.readFault(err)
	}
	if !ok {
		s.eraseNeeded = true
		s.log.Warn("nvstore: record chain runs past page end", "offset", last)
		return 0, errcode.SizeMismatch
	}
	if !found {
		s.cursor = 0
		return 0, errcode.NotFound
	}

	size, err := s.flash.ReadWord(last)
	if err != nil {
		return 0, s.readFault(err)
	}
	if size != s.recordSize {
		s.eraseNeeded = true
		s.log.Warn("nvstore: stored record size mismatch", "offset", last, "stored", size, "want", s.recordSize)
		return 0, errcode.SizeMismatch
	}

	off := last + wordSize
	for i := uint32(0); i < words; i++ {
		if buf[i], err = s.flash.ReadWord(off); err != nil {
			return 0, s.readFault(err)
		}
		off += wordSize
	}
	s.cursor = off
	s.stats.Recoveries++
	s.log.Debug("nvstore: record recovered", "offset", last, "cursor", s.cursor)
	return int(s.recordSize), nil
}

// scan walks the size words from the page start. It returns the offset of
// the last record header, whether any record exists, and false if a size
// word points past the page end.
func (s *Store) scan() (last uint32, found bool, ok bool, err error) {
	page := s.flash.Size()
	off := uint32(0)
	for off < page {
		size, rerr := s.flash.ReadWord(off)
		if rerr != nil {
			return off, found, false, rerr
		}
		if size == sentinel {
			return last, found, true, nil
		}
		span := uint64(wordSize) + uint64(mathx.AlignUp(size, wordSize))
		if size%wordSize != 0 || uint64(off)+span > uint64(page) {
			return off, found, false, nil
		}
		last, found = off, true
		off += uint32(span)
	}
	// Page filled exactly to its end.
	return last, found, true, nil
}

// readFault handles a failed flash read during recovery. Where free space
// begins is unknown, so the next write starts from a fresh erase.
func (s *Store) readFault(err error) error {
	s.cursor = 0
	return s.fail("nvstore.read", errcode.ReadFailed, err)
}

// Write appends data as a new record, erasing the page first when it is
// flagged for erase or the record would not fit. data must hold exactly
// RecordSize()/4 words.
func (s *Store) Write(ctx context.Context, data []uint32) error {
	if s.recordSize == 0 {
		return errcode.NotReady
	}
	words := s.recordSize / wordSize
	if uint32(len(data)) != words {
		return &errcode.E{C: errcode.InvalidParams, Op: "nvstore.Write", Msg: "payload length differs from record size"}
	}

	if s.eraseNeeded || s.cursor+s.Stride() > s.flash.Size() {
		if err := s.erase(ctx); err != nil {
			return err
		}
	}

	if err := s.program(ctx, s.recordSize); err != nil {
		return err
	}
	for _, w := range data {
		if err := s.program(ctx, w); err != nil {
			return err
		}
	}
	s.stats.Writes++
	return nil
}

// WriteComplete polls the controller for the most recent write or erase.
func (s *Store) WriteComplete() bool { return s.flash.WriteDone() }

func (s *Store) erase(ctx context.Context) error {
	reason := "page_full"
	if s.eraseNeeded {
		reason = "erase_needed"
	}
	if err := s.flash.ErasePage(); err != nil {
		return s.fail("nvstore.erase", errcode.WriteFailed, err)
	}
	if err := s.wait(ctx, "nvstore.erase"); err != nil {
		return err
	}
	s.stats.Erases++
	s.eraseNeeded = false
	s.cursor = 0
	s.log.Debug("nvstore: page erased", "reason", reason, "erases", s.stats.Erases)
	return nil
}

// program writes one word at the cursor, waits for completion and verifies it.
func (s *Store) program(ctx context.Context, v uint32) error {
	off := s.cursor
	if err := s.flash.WriteWord(off, v); err != nil {
		return s.fail("nvstore.write", errcode.WriteFailed, err)
	}
	if err := s.wait(ctx, "nvstore.write"); err != nil {
		return err
	}
	got, err := s.flash.ReadWord(off)
	if err != nil {
		return s.fail("nvstore.verify", errcode.WriteFailed, err)
	}
	if got != v {
		return s.fail("nvstore.verify", errcode.WriteFailed, nil)
	}
	s.cursor += wordSize
	return nil
}

// wait polls WriteDone until it reports true, the poll timeout elapses, or
// ctx is cancelled.
func (s *Store) wait(ctx context.Context, op string) error {
	deadline := time.Now().Add(s.pollTimeout)
	for !s.flash.WriteDone() {
		if err := ctx.Err(); err != nil {
			return s.fail(op, errcode.Timeout, err)
		}
		if time.Now().After(deadline) {
			return s.fail(op, errcode.Timeout, nil)
		}
		if s.pollInterval > 0 {
			time.Sleep(s.pollInterval)
		}
	}
	return nil
}

// fail records a hardware failure. The page is flagged so the next write
// starts from a fresh erase instead of appending after a half-written record.
func (s *Store) fail(op string, c errcode.Code, cause error) error {
	s.eraseNeeded = true
	s.stats.Failures++
	s.log.Error("nvstore: flash operation failed", "op", op, "code", string(c), "err", cause)
	return &errcode.E{C: c, Op: op, Err: cause}
}

// IsAbsent reports whether err from ReadLast means "no usable record", the
// case where callers fall back to their defaults.
func IsAbsent(err error) bool {
	switch errcode.Of(err) {
	case errcode.NotFound, errcode.SizeMismatch:
		return true
	}
	return false
}
