package cqldao

import (
	"context"
	"os"
	"strings"
	"testing"
)

// Tests run against a live cluster given as a comma separated host list in
// PLAYTOGETHER_CASSANDRA. The keyspace playtogether_test must exist.
var session *GocqlSession

func TestMain(m *testing.M) {
	hosts := os.Getenv("PLAYTOGETHER_CASSANDRA")
	if hosts != "" {
		session = NewSession("playtogether_test", 4, strings.Split(hosts, ",")...)
		if err := session.Connect(); err != nil {
			panic(err)
		}
		if err := CreateSchema(context.Background(), session); err != nil {
			panic(err)
		}
	}
	code := m.Run()
	if session != nil && session.IsValid() {
		session.Close()
	}
	os.Exit(code)
}

func testStore(t *testing.T) *Store {
	t.Helper()
	if session == nil {
		t.Skip("PLAYTOGETHER_CASSANDRA not set")
	}
	if err := Truncate(context.Background(), session); err != nil {
		t.Fatal(err)
	}
	return NewStore(session)
}

func TestTimelineBucket(t *testing.T) {
	var tests = []struct {
		millis   int64
		expected int
	}{
		{1704067200000, 2024}, // 2024-01-01T00:00:00Z
		{1704067199999, 2023},
		{1735689600000, 2025},
	}
	for i, test := range tests {
		if got := timelineBucket(test.millis); got != test.expected {
			t.Fatalf("test %v: Expected '%v' but got '%v'", i, test.expected, got)
		}
	}
}
