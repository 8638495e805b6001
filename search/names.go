package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/iconview-mcp/catalog"
)

// NameIndex provides full-text search over icon names using an in-memory Bleve index.
// It is rebuilt from scratch whenever the catalog is replaced.
type NameIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	// icons maps document IDs (relative paths) back to catalog records
	icons map[string]indexedIcon
}

type indexedIcon struct {
	folder string
	record catalog.IconRecord
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	Name   string `json:"name"`
	Stem   string `json:"stem"`
	Folder string `json:"folder"`
}

// NewNameIndex creates an empty in-memory name index.
func NewNameIndex() (*NameIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &NameIndex{index: bleveIndex, icons: make(map[string]indexedIcon)}, nil
}

// buildIndexMapping creates the Bleve mapping for icon documents.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Store = false
	nameFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Lowercased base name without extension, kept whole for prefix queries
	stemFieldMapping := bleve.NewKeywordFieldMapping()
	stemFieldMapping.Store = false
	stemFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("stem", stemFieldMapping)

	folderFieldMapping := bleve.NewTextFieldMapping()
	folderFieldMapping.Store = false
	folderFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("folder", folderFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Rebuild replaces the index contents with the icons of c.
func (ni *NameIndex) Rebuild(c *catalog.Catalog) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating bleve index: %w", err)
	}

	icons := make(map[string]indexedIcon, c.Len())
	batch := fresh.NewBatch()
	for _, folder := range c.ListFolders() {
		for _, icon := range c.Icons(folder) {
			id := icon.RelativePath
			if id == "" {
				id = icon.ContentRef
			}
			icons[id] = indexedIcon{folder: folder, record: icon}
			doc := bleveDocument{
				Name:   icon.Name,
				Stem:   stem(icon.Name),
				Folder: folder,
			}
			if err := batch.Index(id, doc); err != nil {
				fresh.Close()
				return fmt.Errorf("indexing icon %s: %w", id, err)
			}
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("applying index batch: %w", err)
	}

	ni.mu.Lock()
	previous := ni.index
	ni.index = fresh
	ni.icons = icons
	ni.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	return nil
}

// Hit is one icon matched by a search.
type Hit struct {
	Folder string
	Icon   catalog.IconRecord
	Score  float64
}

// SearchOptions configures a name search.
type SearchOptions struct {
	Query      string
	Selection  catalog.Selection // restricts hits to one folder unless "all"
	FileGlob   string            // doublestar pattern over relative paths
	MaxResults int
}

// Search finds icons by name.
// Query format:
//   - Plain text: word match on names and folders, plus name prefix match
//   - "quoted text": phrase query
//   - /regex/: regexp query over indexed terms
func (ni *NameIndex) Search(options SearchOptions) ([]Hit, int, error) {
	ni.mu.RLock()
	defer ni.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	glob := strings.ReplaceAll(options.FileGlob, "\\", "/")
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return nil, 0, fmt.Errorf("invalid glob pattern: %s", options.FileGlob)
	}

	searchRequest := bleve.NewSearchRequest(buildQuery(options.Query))
	// Fetch extra hits because folder and glob filters run after the query
	searchRequest.Size = options.MaxResults * 5

	searchResults, err := ni.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	var hits []Hit
	total := 0
	for _, hit := range searchResults.Hits {
		entry, ok := ni.icons[hit.ID]
		if !ok {
			continue
		}
		if !options.Selection.IsAll() && entry.folder != options.Selection.Key() {
			continue
		}
		if glob != "" {
			matched, matchErr := doublestar.Match(glob, entry.record.RelativePath)
			if matchErr != nil || !matched {
				continue
			}
		}
		total++
		if len(hits) < options.MaxResults {
			hits = append(hits, Hit{Folder: entry.folder, Icon: entry.record, Score: hit.Score})
		}
	}

	return hits, total, nil
}

// buildQuery parses the query string into a Bleve query.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	// Regex query: /pattern/
	// The analyzer keeps "github.png" as one term, so the pattern also runs
	// against the whole stem ("github") where it can match without the extension.
	if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2 {
		pattern := queryString[1 : len(queryString)-1]
		stemQuery := bleve.NewRegexpQuery(pattern)
		stemQuery.SetField("stem")
		return bleve.NewDisjunctionQuery(bleve.NewRegexpQuery(pattern), stemQuery)
	}

	// Phrase query: "exact phrase"
	if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2 {
		return bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
	}

	matchQuery := bleve.NewMatchQuery(queryString)
	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(queryString))
	prefixQuery.SetField("stem")
	return bleve.NewDisjunctionQuery(matchQuery, prefixQuery)
}

// stem lowercases a file name and strips its extension.
func stem(name string) string {
	name = strings.ToLower(name)
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		return name[:dot]
	}
	return name
}

// DocumentCount returns the number of indexed icons.
func (ni *NameIndex) DocumentCount() uint64 {
	ni.mu.RLock()
	defer ni.mu.RUnlock()
	count, _ := ni.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ni *NameIndex) Close() error {
	ni.mu.Lock()
	defer ni.mu.Unlock()
	return ni.index.Close()
}
