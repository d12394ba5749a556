// storage/postgres_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package storage

import (
	"context"
	"os"
	"slices"
	"testing"
)

// postgresTestURL returns the connection string of a scratch database
// to run the PostgreSQL tests against; the tests are skipped if it's
// not set.
func postgresTestURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("CIFP_TEST_POSTGRES")
	if url == "" {
		t.Skip("CIFP_TEST_POSTGRES not set")
	}
	return url
}

func TestExportPostgres(t *testing.T) {
	url := postgresTestURL(t)
	ctx := context.Background()
	db := testDatabase(t)

	// The second export replaces the first.
	for range 2 {
		if err := ExportPostgres(ctx, db, url, nil); err != nil {
			t.Fatalf("ExportPostgres: %v", err)
		}
	}

	d, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	for table, want := range map[string]int{"airports": 1, "legs": 2, "airway_fixes": 2} {
		if n, err := d.Count(ctx, table); err != nil || n != want {
			t.Errorf("%s: got %d rows, %v; expected %d", table, n, err, want)
		}
	}

	fixes, err := d.ProcedureFixes(ctx, "KXYZ", "TEST1", "TRANS")
	if err != nil || !slices.Equal(fixes, []string{"FIXAA", "FIXBB"}) {
		t.Errorf("got fixes %v %v", fixes, err)
	}
}
