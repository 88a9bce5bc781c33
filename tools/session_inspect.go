package main

import (
	"boardroom/domain"
	"boardroom/repositories"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// session_inspect dumps the session store without touching it.
// Without -session it lists every session and its message count.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	sessionID := flag.String("session", "", "Session to dump")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewSessionRepository(db, slog.Default(), nil)
	table := newTable()

	if *sessionID == "" {
		counts, err := repository.Sessions()
		if err != nil {
			log.Fatal(err)
		}
		table.SetHeader([]string{"Session", "Messages"})
		ids := lo.Keys(counts)
		slices.Sort(ids)
		for _, id := range ids {
			table.Append([]string{id, fmt.Sprint(counts[id])})
		}
		table.Render()
		return
	}

	messages, err := repository.List(*sessionID)
	if err != nil {
		log.Fatal(err)
	}
	table.SetHeader([]string{"ID", "Time", "Speaker", "Content"})
	for _, m := range messages {
		table.Append([]string{shortID(m), m.At.Format("15:04:05"), speaker(m), oneLine(m.Content)})
	}
	table.Render()
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
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
	return table
}

func shortID(m domain.SessionMessage) string {
	id := m.ID.String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func speaker(m domain.SessionMessage) string {
	if m.IsUser {
		return "user"
	}
	return m.Agent
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 100 {
		return string(r[:99]) + "…"
	}
	return s
}

// openDB opens read-only and bypasses the lock so a running server is not disturbed.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
