package batchindex

import (
	"errors"
	"fmt"
)

// ErrBadInput is returned when the input stream does not match the
// expected grammar.
var ErrBadInput = errors.New("batchindex: malformed input")

// record is one ingested (key, size, offset) triple. key points into the
// input mapping until the arena-copy phase rewrites it.
type record struct {
	key    []byte
	hash   uint64
	size   uint64
	offset uint64
}

// query is one lookup with its hash precomputed at parse time.
type query struct {
	key  []byte
	hash uint64
}

// parser walks the mapped input without copying. Tokens are returned as
// subslices of the mapping.
type parser struct {
	data []byte
	pos  int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) && isSpace(p.data[p.pos]) {
		p.pos++
	}
}

// token returns the next whitespace-delimited token.
func (p *parser) token() ([]byte, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.data) && !isSpace(p.data[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("%w: unexpected end of input at byte %d", ErrBadInput, p.pos)
	}
	return p.data[start:p.pos], nil
}

// uint parses the next token as an unsigned decimal integer.
func (p *parser) uint() (uint64, error) {
	tok, err := p.token()
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: expected integer, got %q", ErrBadInput, tok)
		}
		v = v*10 + uint64(c-'0')
	}
	return v, nil
}

// parseRecords reads the N-record header section.
func (p *parser) parseRecords() ([]record, error) {
	n, err := p.uint()
	if err != nil {
		return nil, err
	}
	records := make([]record, n)
	for i := range records {
		key, err := p.token()
		if err != nil {
			return nil, err
		}
		size, err := p.uint()
		if err != nil {
			return nil, err
		}
		offset, err := p.uint()
		if err != nil {
			return nil, err
		}
		records[i] = record{key: key, size: size, offset: offset}
	}
	return records, nil
}

// parseQueries reads the Q-query section, hashing each key as it goes so
// lookups and prefetches never re-hash.
func (p *parser) parseQueries() ([]query, error) {
	q, err := p.uint()
	if err != nil {
		return nil, err
	}
	queries := make([]query, q)
	for i := range queries {
		key, err := p.token()
		if err != nil {
			return nil, err
		}
		queries[i] = query{key: key, hash: hashKey(key)}
	}
	return queries, nil
}
