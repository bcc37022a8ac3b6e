// Command orbit-agent-migrate backs up and verifies the agent's SQLite
// database outside of a running agent process: a standalone tool an
// operator runs before an upgrade, mirroring the backup-then-inspect
// shape of the teacher's bucket migration tool but against database/sql
// + modernc.org/sqlite instead of bbolt buckets.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	_ "modernc.org/sqlite"
)

var (
	dbPath     = flag.String("db", "orbit-data/agent.db", "Path to the agent's SQLite database")
	dryRun     = flag.Bool("dry-run", false, "Run integrity checks without writing a backup")
	backupPath = flag.String("backup", "", "Backup destination (default: <db>.backup)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("orbit-agent database maintenance tool")
	log.Println("======================================")

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		log.Fatalf("database not found at %s", *dbPath)
	}

	log.Printf("database: %s", *dbPath)
	log.Printf("dry run: %v", *dryRun)

	if !*dryRun {
		dest := *backupPath
		if dest == "" {
			dest = *dbPath + ".backup"
		}
		log.Printf("creating backup: %s", dest)
		if err := copyFile(*dbPath, dest); err != nil {
			log.Fatalf("backup failed: %v", err)
		}
		log.Println("backup created")
	}

	if err := checkIntegrity(*dbPath); err != nil {
		log.Fatalf("integrity check failed: %v", err)
	}
	log.Println("integrity check passed")

	if !*dryRun {
		if err := vacuum(*dbPath); err != nil {
			log.Fatalf("vacuum failed: %v", err)
		}
		log.Println("vacuum complete")
	}
}

func checkIntegrity(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity_check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity_check reported: %s", result)
	}
	return nil
}

func vacuum(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	_, err = db.Exec("VACUUM")
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
