package store

import (
	"bytes"
	"sort"
	"strings"

	"github.com/secureshell/passman/internal/domain"
)

const (
	fieldSeparator = "|"
	recordFields   = 5
)

// MarshalRecords serializes entries as newline-terminated service|username|password|link|salt
// lines, ordered by service so identical collections produce identical files.
func MarshalRecords(entries map[string]*domain.Entry) []byte {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		e := entries[k]
		if e == nil {
			continue
		}
		buf.WriteString(strings.Join([]string{
			k,
			e.Username,
			e.EncryptedPassword,
			e.ServiceLink,
			e.Salt,
		}, fieldSeparator))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// UnmarshalRecords parses the plaintext produced by MarshalRecords.
// Lines that do not have exactly five fields are skipped; dropped reports how many.
func UnmarshalRecords(data []byte) (entries map[string]*domain.Entry, dropped int) {
	entries = make(map[string]*domain.Entry)
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, fieldSeparator)
		if len(fields) != recordFields {
			dropped++
			continue
		}
		entries[fields[0]] = &domain.Entry{
			Service:           fields[0],
			Username:          fields[1],
			EncryptedPassword: fields[2],
			ServiceLink:       fields[3],
			Salt:              fields[4],
		}
	}
	return entries, dropped
}

// ValidField reports whether s can be stored in a record without breaking the format
func ValidField(s string) bool {
	return !strings.ContainsAny(s, fieldSeparator+"\n")
}
