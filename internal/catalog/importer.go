package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/xuri/excelize/v2"
)

// Importer loads word lists into the vocabulary catalog.
type Importer interface {
	Import(ctx context.Context, sourceDir, mapPath string) (models.ImportStats, error)
}

// CorpusMapping describes the corpus a spreadsheet is imported into.
type CorpusMapping struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// XLSXImporter reads every mapped .xlsx file in a directory. The first sheet
// of each file holds "word | count | translation" rows; an optional header
// row is detected by a non-numeric count cell.
type XLSXImporter struct {
	repo repository.CatalogRepository
}

func NewXLSXImporter(repo repository.CatalogRepository) *XLSXImporter {
	return &XLSXImporter{repo: repo}
}

// LoadMapping reads the JSON mapping file. Keys are file names without the
// extension; a mapping without a slug uses its key.
func LoadMapping(path string) (map[string]CorpusMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	var mapping map[string]CorpusMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	for key, m := range mapping {
		if m.Slug == "" {
			m.Slug = key
		}
		if m.Name == "" {
			m.Name = m.Slug
		}
		if m.SourceLang == "" || m.TargetLang == "" {
			return nil, fmt.Errorf("mapping %q needs source_lang and target_lang", key)
		}
		mapping[key] = m
	}
	return mapping, nil
}

func (i *XLSXImporter) Import(ctx context.Context, sourceDir, mapPath string) (models.ImportStats, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog")
	log.Debug("importing from %s with mapping %s", sourceDir, mapPath)

	var total models.ImportStats
	mapping, err := LoadMapping(mapPath)
	if err != nil {
		return total, err
	}
	files, err := filepath.Glob(filepath.Join(sourceDir, "*.xlsx"))
	if err != nil {
		return total, fmt.Errorf("list %s: %w", sourceDir, err)
	}
	sort.Strings(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, ok := mapping[stem]
		if !ok {
			log.Warn("skipping %s: not in mapping", filepath.Base(path))
			continue
		}

		entries, skipped, err := ReadWorkbook(path)
		if err != nil {
			return total, err
		}
		stats, err := i.repo.ImportCorpus(ctx, models.CorpusImport{
			Slug:       m.Slug,
			Name:       m.Name,
			SourceLang: m.SourceLang,
			TargetLang: m.TargetLang,
			Entries:    entries,
		})
		if err != nil {
			return total, fmt.Errorf("import %s: %w", m.Slug, err)
		}
		stats.Skipped += skipped
		log.Info("imported corpus %s: words=%d, translations=%d, skipped=%d", m.Slug, stats.Words, stats.Translations, stats.Skipped)

		total.Corpora += stats.Corpora
		total.Words += stats.Words
		total.Translations += stats.Translations
		total.Skipped += stats.Skipped
	}
	return total, nil
}

// ReadWorkbook parses the first sheet of an .xlsx file into catalog entries
// ranked by descending count (ties by lemma). Rows without a word, a numeric
// count or a translation are skipped and counted.
func ReadWorkbook(path string) ([]models.CatalogEntry, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("read rows of %s: %w", path, err)
	}
	entries, skipped := buildEntries(rows)
	return entries, skipped, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func buildEntries(rows [][]string) ([]models.CatalogEntry, int) {
	byLemma := make(map[string]*models.CatalogEntry)
	seen := make(map[string]map[string]bool)
	skipped := 0

	for n, row := range rows {
		word, countCell, translation := cell(row, 0), cell(row, 1), cell(row, 2)
		count, err := strconv.Atoi(countCell)
		if n == 0 && err != nil {
			continue
		}
		if word == "" || translation == "" || err != nil || count < 0 {
			skipped++
			continue
		}

		e, ok := byLemma[word]
		if !ok {
			e = &models.CatalogEntry{Lemma: word}
			byLemma[word] = e
			seen[word] = make(map[string]bool)
		}
		e.Count = max(e.Count, count)
		if !seen[word][translation] {
			seen[word][translation] = true
			e.Translations = append(e.Translations, translation)
		}
	}

	entries := make([]models.CatalogEntry, 0, len(byLemma))
	for _, e := range byLemma {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Count != entries[b].Count {
			return entries[a].Count > entries[b].Count
		}
		return entries[a].Lemma < entries[b].Lemma
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, skipped
}
