//go:build blackbox

package blackbox

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func price(x float64) string {
	return fmt.Sprintf("%.2f", x)
}

// writePricesCSV writes n rows one second apart. event returns the optional
// event and size columns for row i.
func writePricesCSV(t *testing.T, path string, n int, priceFn func(i int) float64, event func(i int) (string, string)) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, _ = f.WriteString("time,price,event,arg1\n")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		ev, arg := event(i)
		ts := start.Add(time.Second * time.Duration(i)).Format(time.RFC3339)
		_, _ = f.WriteString(ts + "," + price(priceFn(i)) + "," + ev + "," + arg + "\n")
	}
}

func count(t *testing.T, dbPath, table string) int {
	t.Helper()

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}
