package registry

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	chapterColumn = "MPEP Chapter"
	titleColumn   = "Title"
	linkColumn    = "PDF Link from USPTO Website"
)

// LoadIndex reads chapter entries from the MPEP overview workbook. Leading
// description rows before the header row are skipped; rows without a PDF link
// are dropped. Row order is the workbook order, so a duplicated chapter label
// deterministically keeps the last row's URL.
func LoadIndex(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open chapter index: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("chapter index %s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read chapter index rows: %w", err)
	}

	chapterIdx, titleIdx, linkIdx := -1, -1, -1
	headerRow := -1
	for i, row := range rows {
		for j, cell := range row {
			switch strings.TrimSpace(cell) {
			case chapterColumn:
				chapterIdx = j
			case titleColumn:
				titleIdx = j
			case linkColumn:
				linkIdx = j
			}
		}
		if chapterIdx >= 0 && titleIdx >= 0 && linkIdx >= 0 {
			headerRow = i
			break
		}
		chapterIdx, titleIdx, linkIdx = -1, -1, -1
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("chapter index %s: header row not found", path)
	}

	entries := make([]Entry, 0, len(rows)-headerRow)
	for _, row := range rows[headerRow+1:] {
		chapter := cellAt(row, chapterIdx)
		title := cellAt(row, titleIdx)
		link := cellAt(row, linkIdx)
		if chapter == "" || link == "" {
			continue
		}
		entries = append(entries, Entry{
			Label: DisplayName(chapter, title),
			URL:   link,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("chapter index %s: no usable rows", path)
	}
	return entries, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
