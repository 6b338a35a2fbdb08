// Package google adapts a Google Sheets spreadsheet to the tabular store
// ports. Each table lives on its own tab with a header row naming the
// columns; rows are addressed as "row:N" using 1-based sheet row numbers.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"caixa/internal/core"
	ports "caixa/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	entriesSheet  string
	clientsSheet  string
	catsSheet     string

	mu       sync.Mutex
	sheetIDs map[string]int64 // tab title -> numeric sheet id, lazily resolved
}

var _ ports.Store = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service-account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS. Optional tab names:
// SHEET_ENTRIES_TAB (default "Entries"), SHEET_CLIENTS_TAB (default
// "Clients"), SHEET_CATEGORIES_TAB (default "Categories").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		entriesSheet:  envOr("SHEET_ENTRIES_TAB", "Entries"),
		clientsSheet:  envOr("SHEET_CLIENTS_TAB", "Clients"),
		catsSheet:     envOr("SHEET_CATEGORIES_TAB", "Categories"),
		sheetIDs:      make(map[string]int64),
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *Client) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	values, err := c.readTab(ctx, c.entriesSheet)
	if err != nil {
		return nil, err
	}
	return parseEntries(values), nil
}

func (c *Client) AppendEntries(ctx context.Context, entries []core.LedgerEntry) ([]string, error) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	header, rowCount, err := c.tabHeader(ctx, c.entriesSheet)
	if err != nil {
		return nil, err
	}

	data := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		data = append(data, rowValues(header, e.ToRow()))
	}

	// One append call carries the whole batch, so the store commits all
	// rows or none.
	rng := fmt.Sprintf("%s!A:%s", c.entriesSheet, columnLetter(len(header)))
	_, err = c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: data}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("append entries: %w", err)
	}

	refs := make([]string, 0, len(entries))
	for i := range entries {
		refs = append(refs, rowRef(rowCount+1+i))
	}
	slog.InfoContext(ctx, "Appended entries to sheet",
		"tab", c.entriesSheet, "count", len(entries), "first_ref", refs[0])
	return refs, nil
}

func (c *Client) UpdateEntry(ctx context.Context, ref string, e core.LedgerEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	rowNum, err := parseRowRef(ref)
	if err != nil {
		return err
	}
	header, _, err := c.tabHeader(ctx, c.entriesSheet)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", c.entriesSheet, rowNum, columnLetter(len(header)), rowNum)
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]interface{}{rowValues(header, e.ToRow())}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update entry %s: %w", ref, err)
	}
	slog.InfoContext(ctx, "Updated entry row", "tab", c.entriesSheet, "ref", ref)
	return nil
}

func (c *Client) DeleteEntry(ctx context.Context, ref string) error {
	rowNum, err := parseRowRef(ref)
	if err != nil {
		return err
	}
	sheetID, err := c.sheetID(ctx, c.entriesSheet)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete entry %s: %w", ref, err)
	}
	slog.InfoContext(ctx, "Deleted entry row", "tab", c.entriesSheet, "ref", ref)
	return nil
}

func (c *Client) ListClients(ctx context.Context) ([]core.Client, error) {
	values, err := c.readTab(ctx, c.clientsSheet)
	if err != nil {
		return nil, err
	}
	return parseClients(values), nil
}

func (c *Client) AppendClient(ctx context.Context, client core.Client) (string, error) {
	if err := client.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	header, rowCount, err := c.tabHeader(ctx, c.clientsSheet)
	if err != nil {
		return "", err
	}
	rng := fmt.Sprintf("%s!A:%s", c.clientsSheet, columnLetter(len(header)))
	_, err = c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]interface{}{rowValues(header, clientToRow(client))}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append client: %w", err)
	}
	return rowRef(rowCount + 1), nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	values, err := c.readTab(ctx, c.catsSheet)
	if err != nil {
		return nil, err
	}
	return parseCategories(values), nil
}

// readTab fetches the full value matrix of a tab, header row included.
func (c *Client) readTab(ctx context.Context, tab string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, tab).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read tab %s: %w", tab, err)
	}
	return resp.Values, nil
}

// tabHeader returns the header columns and the current row count of a tab.
func (c *Client) tabHeader(ctx context.Context, tab string) ([]string, int, error) {
	values, err := c.readTab(ctx, tab)
	if err != nil {
		return nil, 0, err
	}
	if len(values) == 0 {
		return nil, 0, fmt.Errorf("tab %s has no header row", tab)
	}
	return toStrings(values[0]), len(values), nil
}

func (c *Client) sheetID(ctx context.Context, tab string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[tab]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[tab]
	if !ok {
		return 0, fmt.Errorf("tab %s not found in spreadsheet", tab)
	}
	return id, nil
}

func rowRef(n int) string {
	return "row:" + strconv.Itoa(n)
}

func parseRowRef(ref string) (int, error) {
	numStr, ok := strings.CutPrefix(ref, "row:")
	if !ok {
		return 0, fmt.Errorf("malformed row reference %q", ref)
	}
	n, err := strconv.Atoi(numStr)
	if err != nil || n < 2 { // row 1 is the header
		return 0, fmt.Errorf("malformed row reference %q", ref)
	}
	return n, nil
}

// columnLetter converts a 1-based column count to its A1 letter ("A",
// "N", "AB").
func columnLetter(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}
