package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"lightbox/internal/meta"
)

// resolveTarget maps the --record/--selection flag pair onto the service's
// record addressing: a positive id targets one record, the selection flag
// targets the active working set.
func resolveTarget(recordID int64, useSelection bool) (int64, error) {
	if useSelection {
		if recordID > 0 {
			return 0, errors.New("--record and --selection are mutually exclusive")
		}
		return meta.NoRecord, nil
	}
	if recordID <= 0 {
		return 0, errors.New("a record id is required (or pass --selection)")
	}
	return recordID, nil
}

func parseRecordID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q", arg)
	}
	return id, nil
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
