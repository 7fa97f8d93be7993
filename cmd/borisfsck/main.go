// Command borisfsck walks a boris data directory and reports integrity
// problems — duplicate ids, malformed records, orphaned .tmp files —
// without mutating anything. It is the offline counterpart to the
// preflight scan borisd runs at startup.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/duskhold/boris/pkg/entity"
	"github.com/duskhold/boris/pkg/fdb"
)

var domains = []string{"rooms", "chars", "users"}

func main() {
	dataDir := flag.String("data-dir", "data", "boris data directory")
	flag.Parse()

	log.SetFlags(0)
	log.Println("boris data integrity check")
	log.Println("===========================")

	problems := 0
	for _, domain := range domains {
		n, err := checkDomain(*dataDir, domain)
		if err != nil {
			log.Printf("%s: %v", domain, err)
			problems++
			continue
		}
		problems += n
	}

	if problems == 0 {
		log.Println("\n✓ no problems found")
		return
	}
	log.Printf("\n✗ %d problem(s) found", problems)
	os.Exit(1)
}

func checkDomain(dataDir, domain string) (int, error) {
	dir := filepath.Join(dataDir, domain)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("%s: directory does not exist yet (nothing to check)", domain)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	problems := 0
	db := fdb.Open(dataDir)
	seen := make(map[uint64]string)
	ids := make([]string, 0, len(entries))

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasSuffix(name, ".tmp") {
			log.Printf("%s: orphaned temp file %q (write never completed or crashed mid-commit)", domain, name)
			problems++
			continue
		}
		if strings.HasSuffix(name, "~") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		ids = append(ids, name)
	}
	sort.Strings(ids)

	for _, name := range ids {
		id, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			log.Printf("%s: malformed filename %q: not a valid unsigned id", domain, name)
			problems++
			continue
		}
		if id < 1 || id > entity.IDMax {
			log.Printf("%s: id %d (file %q) is outside the valid range [1, %d]", domain, id, name, entity.IDMax)
			problems++
			continue
		}
		if prior, dup := seen[id]; dup {
			log.Printf("%s: id %d is represented by both %q and %q", domain, id, prior, name)
			problems++
			continue
		}
		seen[id] = name

		if err := checkRecord(db, domain, name); err != nil {
			log.Printf("%s: record %q is malformed: %v", domain, name, err)
			problems++
		}
	}
	return problems, nil
}

func checkRecord(db *fdb.DB, domain, id string) error {
	r, err := db.ReadBegin(domain, id)
	if err != nil {
		return err
	}
	seenFields := make(map[string]bool)
	for r.Next() {
		name, _ := r.Pair()
		if seenFields[name] {
			// A duplicate field name is not a parse failure, but it is
			// suspicious enough to flag here rather than silently
			// preferring whichever entity.Registry happens to load last.
			r.End()
			return fmt.Errorf("duplicate field %q", name)
		}
		seenFields[name] = true
	}
	return r.End()
}
