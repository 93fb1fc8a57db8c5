// Applies the .sql files under migrations/ in name order, one
// transaction per file. DATABASE_URL selects the target database.
package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	dir := flag.String("dir", "migrations", "directory with the .sql files")
	list := flag.Bool("list", false, "list the public tables and exit")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[Migrate] DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("[Migrate] connect: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("[Migrate] ping: %v", err)
	}

	if *list {
		listTables(db)
		return
	}
	apply(db, *dir)
}

func listTables(db *sql.DB) {
	rows, err := db.Query("SELECT tablename FROM pg_tables WHERE schemaname='public' ORDER BY tablename")
	if err != nil {
		log.Fatalf("[Migrate] listing tables: %v", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			log.Fatalf("[Migrate] scanning table name: %v", err)
		}
		log.Printf("  %s", table)
		n++
	}
	log.Printf("[Migrate] %d tables", n)
}

func apply(db *sql.DB, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("[Migrate] reading %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	applied, failed := 0, 0
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatalf("[Migrate] reading %s: %v", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			log.Fatalf("[Migrate] begin for %s: %v", name, err)
		}
		if _, err := tx.Exec(string(data)); err != nil {
			tx.Rollback()
			log.Printf("[Migrate] %s: %v", name, err)
			failed++
			continue
		}
		if err := tx.Commit(); err != nil {
			log.Fatalf("[Migrate] commit for %s: %v", name, err)
		}
		log.Printf("[Migrate] %s ok", name)
		applied++
	}
	log.Printf("[Migrate] done: %d applied, %d failed", applied, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
