package main

import (
	"fmt"
	"log"
	"os"
	"rosterhub/repositories"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.StringP("prefix", "p", "chat:", "Prefix to scan, empty scans every known prefix")
	withIndex := flag.Bool("index", false, "Include idx: entries")
	limit := flag.IntP("limit", "n", 0, "Maximum number of rows, 0 means unlimited")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Size", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	prefixes := repositories.Prefixes
	if *prefix != "" {
		prefixes = []string{*prefix}
	}

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for _, p := range prefixes {
			prefixBytes := []byte(p)
			for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
				if *limit > 0 && rows >= *limit {
					return nil
				}
				item := it.Item()
				key := string(item.Key())
				if !*withIndex && strings.HasPrefix(key, "idx:") {
					continue
				}
				err := item.Value(func(v []byte) error {
					kind, detail := repositories.Describe(key, v)
					table.Append([]string{key, kind, fmt.Sprintf("%d", len(v)), detail})
					return nil
				})
				if err != nil {
					return err
				}
				rows++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
	fmt.Printf("%d row(s)\n", rows)
}

// openDB opens the store read-only. A store left dirty by a crash is first
// reopened in write mode so badger can truncate its value log.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err == nil {
		return db, nil
	}
	if !strings.Contains(err.Error(), "Log truncate required") {
		return nil, err
	}
	fmt.Println("Value log needs truncation, repairing before reading")
	repaired, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
	if err != nil {
		return nil, fmt.Errorf("repair failed: %w", err)
	}
	_ = repaired.Close()
	return badger.Open(opts)
}
