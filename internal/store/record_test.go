package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureshell/passman/internal/domain"
)

func TestMarshalRecordsSorted(t *testing.T) {
	entries := map[string]*domain.Entry{
		"b": {Service: "b", Username: "u2", EncryptedPassword: "02", Salt: "s2"},
		"a": {Service: "a", Username: "u1", EncryptedPassword: "01", ServiceLink: "l", Salt: "s1"},
	}
	assert.Equal(t, "a|u1|01|l|s1\nb|u2|02||s2\n", string(MarshalRecords(entries)))
	assert.Empty(t, MarshalRecords(nil))
}

func TestUnmarshalRecordsDropsMalformed(t *testing.T) {
	data := []byte("a|u|01|l|s\n" +
		"too|few|fields\n" +
		"\n" +
		"too|many|fields|in|this|line\n" +
		"b|u|02||s\n")

	entries, dropped := UnmarshalRecords(data)
	assert.Equal(t, 2, dropped)
	require.Len(t, entries, 2)
	assert.Equal(t, &domain.Entry{Service: "a", Username: "u", EncryptedPassword: "01", ServiceLink: "l", Salt: "s"}, entries["a"])
	assert.Equal(t, "", entries["b"].ServiceLink)
}

func TestUnmarshalRecordsWithoutTrailingNewline(t *testing.T) {
	entries, dropped := UnmarshalRecords([]byte("a|u|01|l|s"))
	assert.Zero(t, dropped)
	assert.Len(t, entries, 1)
}

func TestRecordsRoundTrip(t *testing.T) {
	entries := testEntries()
	parsed, dropped := UnmarshalRecords(MarshalRecords(entries))
	assert.Zero(t, dropped)
	assert.Equal(t, entries, parsed)
}

func TestValidField(t *testing.T) {
	assert.True(t, ValidField("example.com"))
	assert.True(t, ValidField(""))
	assert.False(t, ValidField("a|b"))
	assert.False(t, ValidField("a\nb"))
}
