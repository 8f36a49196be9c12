package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tablescout/tablescout/internal/extractor"
	"github.com/tablescout/tablescout/internal/gridio"
	"github.com/tablescout/tablescout/internal/runtime"
	"github.com/tablescout/tablescout/pkg/mcperr"
	"github.com/tablescout/tablescout/pkg/pagination"
	"github.com/tablescout/tablescout/pkg/validation"
)

// discoveryCache memoizes the last Discover result per file handle so
// list_tables can page through previously discovered tables without
// re-running the classifier on every page.
type discoveryCache struct {
	mu      sync.Mutex
	results map[string]cachedResult
}

type cachedResult struct {
	version int64
	result  *extractor.FileResult
}

func newDiscoveryCache() *discoveryCache {
	return &discoveryCache{results: map[string]cachedResult{}}
}

func (c *discoveryCache) get(handleID string, version int64) (*extractor.FileResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cr, ok := c.results[handleID]
	if !ok || cr.version != version {
		return nil, false
	}
	return cr.result, true
}

func (c *discoveryCache) put(handleID string, version int64, result *extractor.FileResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[handleID] = cachedResult{version: version, result: result}
}

// DiscoverTablesInput defines parameters for running structure discovery.
type DiscoverTablesInput struct {
	Path  string `json:"path" validate:"required,filepath_ext" jsonschema_description:"Absolute or allowed path to a .csv, .tsv, .xlsx, or .xlsm file"`
	Sheet string `json:"sheet,omitempty" jsonschema_description:"Sheet name for spreadsheet files; defaults to the first sheet"`
}

// TableSummary is one discovered table's headline shape, omitting full row
// data so the response stays small.
type TableSummary struct {
	TableIndex        int      `json:"table_index"`
	TopBoundary       int      `json:"top_boundary"`
	BottomBoundary    int      `json:"bottom_boundary"`
	DataStart         int      `json:"data_start"`
	DataEnd           int      `json:"data_end"`
	ColumnNames       []string `json:"column_names"`
	DataEndConfidence float64  `json:"data_end_confidence"`
}

// DiscoverTablesOutput documents discovered tables and file-level metadata.
type DiscoverTablesOutput struct {
	Path                    string         `json:"path"`
	LinesProcessed          int            `json:"lines_processed"`
	ColumnsInFile           int            `json:"columns_in_file"`
	ColumnsInFileConsidered int            `json:"columns_in_file_considered"`
	Tables                  []TableSummary `json:"tables"`
}

// ListTablesInput defines parameters for paginating a table's data rows.
type ListTablesInput struct {
	Path       string `json:"path,omitempty" validate:"required_without=Cursor" jsonschema_description:"Absolute or allowed path; required unless cursor is supplied"`
	Sheet      string `json:"sheet,omitempty" jsonschema_description:"Sheet name for spreadsheet files"`
	TableIndex int    `json:"table_index,omitempty" jsonschema_description:"0-based index into the file's discovered tables"`
	PageSize   int    `json:"page_size,omitempty" jsonschema_description:"Max rows per page (bounded)"`
	Cursor     string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque pagination cursor; takes precedence over path/table_index/page_size"`
}

// ListTablesOutput documents one page of a discovered table's data rows.
type ListTablesOutput struct {
	Path       string     `json:"path"`
	TableIndex int        `json:"table_index"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	Meta       PageMeta   `json:"meta"`
}

// PageMeta captures paging/truncation metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// RegisterDiscoveryTools wires discover_tables and list_tables against the
// given grid cache, classifier, and runtime limits.
func RegisterDiscoveryTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, mgr *gridio.Manager, ext *extractor.Extractor) {
	cache := newDiscoveryCache()

	discover := mcp.NewTool(
		"discover_tables",
		mcp.WithDescription("Scan a delimited text or spreadsheet file and return the rectangular table regions found within it: boundaries, header-derived column names, subheader and aggregation scopes, and a per-table confidence score. Use this before list_tables to learn how many tables a file contains and where each one starts."),
		mcp.WithInputSchema[DiscoverTablesInput](),
		mcp.WithOutputSchema[DiscoverTablesOutput](),
	)
	s.AddTool(discover, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in DiscoverTablesInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}

		_, canonical, result, err := discoverFor(ctx, mgr, ext, cache, in.Path, in.Sheet)
		if err != nil {
			return mapOpenOrDiscoveryErr(err), nil
		}

		out := DiscoverTablesOutput{
			Path:                    canonical,
			LinesProcessed:          result.LinesProcessed,
			ColumnsInFile:           result.ColumnsInFile,
			ColumnsInFileConsidered: result.ColumnsInFileConsidered,
			Tables:                  summarizeTables(result),
		}

		summary := fmt.Sprintf("tables=%d lines_processed=%d columns_considered=%d", len(out.Tables), out.LinesProcessed, out.ColumnsInFileConsidered)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(discover)

	list := mcp.NewTool(
		"list_tables",
		mcp.WithDescription("Return a bounded page of data rows for one previously-discovered table, addressed either by path/table_index or by an opaque cursor returned from a prior call. Rows are returned in file order starting at the table's data_start."),
		mcp.WithInputSchema[ListTablesInput](),
		mcp.WithOutputSchema[ListTablesOutput](),
	)
	s.AddTool(list, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in ListTablesInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}

		var cur *pagination.Cursor
		path := strings.TrimSpace(in.Path)
		sheet := in.Sheet
		tableIndex := in.TableIndex
		pageSize := in.PageSize
		if pageSize <= 0 {
			pageSize = limits.PreviewRowLimit
		}
		offset := 0

		if strings.TrimSpace(in.Cursor) != "" {
			c, err := pagination.DecodeCursor(in.Cursor)
			if err != nil {
				return mcperr.New(mcperr.CursorInvalid, err.Error()), nil
			}
			cur = c
			tableIndex = cur.Tix
			pageSize = cur.Ps
			offset = cur.Off
			if path == "" {
				if h, ok := mgr.Get(cur.Fid); ok {
					path = h.Path
					if sheet == "" {
						sheet = h.Sheet
					}
				}
			}
		} else if path == "" {
			return mcperr.New(mcperr.Validation, "path is required (or supply cursor)"), nil
		}

		handleID, canonical, result, err := discoverFor(ctx, mgr, ext, cache, path, sheet)
		if err != nil {
			return mapOpenOrDiscoveryErr(err), nil
		}
		if cur != nil {
			if h, ok := mgr.Get(cur.Fid); ok {
				handleID = cur.Fid
				canonical = h.Path
			}
		}

		if tableIndex < 0 || tableIndex >= len(result.Tables) {
			return mcperr.New(mcperr.InvalidTable, ""), nil
		}
		tbl := result.Tables[tableIndex]

		var version int64
		_ = mgr.WithGrid(handleID, func(grid [][]string, v int64) error { version = v; return nil })
		if cur != nil && cur.Fv != 0 && cur.Fv != version {
			return mcperr.New(mcperr.CursorInvalid, "file was reloaded since the cursor was issued"), nil
		}

		columns := columnNames(tbl)
		rows, total, err := rowsFor(mgr, handleID, tbl, offset, pageSize)
		if err != nil {
			return mcperr.Wrapf(mcperr.ReadFailed, "%v", err), nil
		}

		out := ListTablesOutput{
			Path:       canonical,
			TableIndex: tableIndex,
			Columns:    columns,
			Rows:       rows,
		}
		out.Meta = PageMeta{Total: total, Returned: len(rows), Truncated: offset+len(rows) < total}
		if out.Meta.Truncated {
			next := pagination.Cursor{
				Fid: handleID,
				Tix: tableIndex,
				U:   pagination.UnitRows,
				Off: offset + len(rows),
				Ps:  pageSize,
				Fv:  version,
			}
			tok, err := pagination.EncodeCursor(next)
			if err != nil {
				return mcperr.New(mcperr.CursorBuildFailed, err.Error()), nil
			}
			out.Meta.NextCursor = tok
		}

		summary := fmt.Sprintf("table=%d returned=%d/%d truncated=%v", tableIndex, out.Meta.Returned, out.Meta.Total, out.Meta.Truncated)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(list)
}

func discoverFor(ctx context.Context, mgr *gridio.Manager, ext *extractor.Extractor, cache *discoveryCache, path, sheet string) (handleID, canonical string, result *extractor.FileResult, err error) {
	handleID, canonical, err = mgr.GetOrOpenByPath(ctx, path, sheet)
	if err != nil {
		return "", "", nil, err
	}

	var version int64
	var grid [][]string
	if gerr := mgr.WithGrid(handleID, func(g [][]string, v int64) error {
		grid = g
		version = v
		return nil
	}); gerr != nil {
		return "", "", nil, gerr
	}

	if cached, ok := cache.get(handleID, version); ok {
		return handleID, canonical, cached, nil
	}

	result, err = ext.Discover(grid)
	if err != nil {
		return "", "", nil, err
	}
	cache.put(handleID, version, result)
	return handleID, canonical, result, nil
}

func summarizeTables(result *extractor.FileResult) []TableSummary {
	out := make([]TableSummary, 0, len(result.Tables))
	for i, t := range result.Tables {
		out = append(out, TableSummary{
			TableIndex:        i,
			TopBoundary:       t.TopBoundary,
			BottomBoundary:    t.BottomBoundary,
			DataStart:         t.DataStart,
			DataEnd:           t.DataEnd,
			ColumnNames:       columnNames(t),
			DataEndConfidence: t.DataEndConfidence,
		})
	}
	return out
}

func columnNames(t extractor.Table) []string {
	if len(t.Columns) == 0 {
		return nil
	}
	cols := make([]int, 0, len(t.Columns))
	for col := range t.Columns {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	names := make([]string, 0, len(cols))
	for _, col := range cols {
		var parts []string
		for _, h := range t.Columns[col].ColumnHeader {
			parts = append(parts, h.Value)
		}
		names = append(names, strings.Join(parts, " "))
	}
	return names
}

func rowsFor(mgr *gridio.Manager, handleID string, t extractor.Table, offset, pageSize int) ([][]string, int, error) {
	var out [][]string
	total := t.DataEnd - t.DataStart + 1
	if total < 0 {
		total = 0
	}
	err := mgr.WithGrid(handleID, func(grid [][]string, _ int64) error {
		start := t.DataStart + offset
		end := t.DataStart + offset + pageSize
		if end > t.DataEnd+1 {
			end = t.DataEnd + 1
		}
		for r := start; r < end && r < len(grid); r++ {
			if _, isSubheader := t.SubheaderScope[r]; isSubheader {
				continue
			}
			out = append(out, grid[r])
		}
		return nil
	})
	return out, total, err
}

func mapOpenOrDiscoveryErr(err error) *mcp.CallToolResult {
	if err == nil {
		return mcperr.New(mcperr.OpenFailed, "")
	}
	switch err.(type) {
	case *extractor.Error:
		return mcperr.Wrapf(mcperr.DiscoveryFailed, "%v", err)
	default:
		return mcperr.Wrapf(mcperr.OpenFailed, "%v", err)
	}
}
